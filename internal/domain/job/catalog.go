// Package job holds the built-in pipeline descriptors and their file naming rules.
package job

import (
	"fmt"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/target/report-relay/internal/domain/model"
	"github.com/target/report-relay/internal/domain/window"
)

// Built-in descriptor names.
const (
	NameDailyNAS    = "daily-nas"
	NameDailyAS400  = "daily-as400"
	NameWeeklyNAS   = "weekly-nas"
	NameWeeklyAS400 = "weekly-as400"
	NameMonthlyNAS  = "monthly-nas"
	NameSettlements = "settlements"
	NameShipments   = "shipments"
)

// Sink target names.
const (
	TargetNAS   = "nas"
	TargetAS400 = "as400"
)

// Fixed request parameters of the inventory ledger jobs.
const (
	DefaultMarketplaceID = "ATVPDKIKX0DER"
	AS400FileName        = "amazonia.tsv"
)

// LedgerOptions are the report options sent with every inventory ledger request.
func LedgerOptions() map[string]string {
	return map[string]string{
		"aggregateByLocation":    "FC",
		"aggregatedByTimePeriod": "DAILY",
	}
}

// Paths are the share directories of the NAS jobs.
type Paths struct {
	DailyLedger   string
	WeeklyLedger  string
	MonthlyLedger string
	Settlements   string
	Shipments     string
}

// CatalogOptions parameterises the built-in descriptors.
type CatalogOptions struct {
	MarketplaceIDs []string
	Paths          Paths
	Recipients     []string
	Policy         model.ItemPolicy
	// WorkDir is the parent of the local settlement and shipment copies.
	WorkDir string
}

// Catalog is the set of known descriptors keyed by name.
type Catalog map[string]model.JobDescriptor

// Names lists the descriptor names in sorted order.
func (c Catalog) Names() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the named descriptor.
func (c Catalog) Lookup(name string) (model.JobDescriptor, error) {
	d, ok := c[strings.TrimSpace(name)]
	if !ok {
		return model.JobDescriptor{}, fmt.Errorf("unknown job %q (known: %s)", name, strings.Join(c.Names(), ", "))
	}
	return d, nil
}

// Select resolves a list of names, rejecting unknown ones.
func (c Catalog) Select(names []string) ([]model.JobDescriptor, error) {
	out := make([]model.JobDescriptor, 0, len(names))
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		d, err := c.Lookup(name)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// NewCatalog builds the built-in descriptors.
func NewCatalog(opts CatalogOptions) Catalog {
	marketplaces := opts.MarketplaceIDs
	if len(marketplaces) == 0 {
		marketplaces = []string{DefaultMarketplaceID}
	}
	policy := opts.Policy
	if !policy.Valid() {
		policy = model.ItemPolicyBestEffort
	}

	ledgerReport := func(pad int) model.ReportSpec {
		return model.ReportSpec{
			Type:           model.ReportTypeLedgerSummary,
			MarketplaceIDs: slices.Clone(marketplaces),
			Options:        LedgerOptions(),
			EndPadDays:     pad,
		}
	}

	as400Notice := func(prefix string) *model.NotificationTemplate {
		return &model.NotificationTemplate{
			Subject:    prefix + " Inv Ledger: {filename} Uploaded to AS400",
			Body:       "filename: {filename}\nhas been uploaded and is ready for processing.",
			Recipients: slices.Clone(opts.Recipients),
		}
	}

	descriptors := []model.JobDescriptor{
		{
			Name:        NameDailyNAS,
			Kind:        model.JobKindDaily,
			Report:      ledgerReport(0),
			Window:      window.Daily,
			Filename:    DailyFilename,
			Destination: model.Destination{Target: TargetNAS, Dir: opts.Paths.DailyLedger},
		},
		{
			Name:        NameDailyAS400,
			Kind:        model.JobKindDaily,
			Report:      ledgerReport(0),
			Window:      window.Daily,
			Filename:    Fixed(AS400FileName),
			Destination: model.Destination{Target: TargetAS400},
			Notify:      as400Notice("Daily"),
		},
		{
			Name:        NameWeeklyNAS,
			Kind:        model.JobKindWeekly,
			Report:      ledgerReport(1),
			Window:      window.Weekly,
			Filename:    WeeklyFilename,
			Destination: model.Destination{Target: TargetNAS, Dir: opts.Paths.WeeklyLedger},
		},
		{
			Name:        NameWeeklyAS400,
			Kind:        model.JobKindWeekly,
			Report:      ledgerReport(1),
			Window:      window.Weekly,
			Filename:    Fixed(AS400FileName),
			Destination: model.Destination{Target: TargetAS400},
			Notify:      as400Notice("Weekly"),
		},
		{
			Name:        NameMonthlyNAS,
			Kind:        model.JobKindMonthly,
			Report:      ledgerReport(1),
			Window:      window.Monthly,
			Filename:    MonthlyFilename,
			Destination: model.Destination{Target: TargetNAS, Dir: opts.Paths.MonthlyLedger},
		},
		{
			Name:        NameSettlements,
			Kind:        model.JobKindSettlements,
			Report:      model.ReportSpec{Type: model.ReportTypeSettlement},
			Filename:    SettlementFilename,
			Destination: model.Destination{Target: TargetNAS, Dir: opts.Paths.Settlements},
			ArchiveDir:  localDir(opts.WorkDir, "settlement-downloads"),
			Ledger:      "settlements-log",
			Policy:      policy,
		},
		{
			Name:        NameShipments,
			Kind:        model.JobKindShipments,
			Filename:    ShipmentFilename,
			Destination: model.Destination{Target: TargetNAS, Dir: opts.Paths.Shipments},
			ArchiveDir:  localDir(opts.WorkDir, "shipment-downloads"),
			Ledger:      "shipments-log",
			Policy:      policy,
		},
	}

	catalog := make(Catalog, len(descriptors))
	for _, d := range descriptors {
		catalog[d.Name] = d
	}
	return catalog
}

func localDir(workDir, name string) string {
	if strings.TrimSpace(workDir) == "" {
		return ""
	}
	return filepath.Join(workDir, name)
}

// Fixed always names the file name.
func Fixed(name string) model.FilenameFunc {
	return func(time.Time, model.Window, string) string { return name }
}

// DailyFilename names the daily NAS export after the day two days before today.
func DailyFilename(today time.Time, _ model.Window, _ string) string {
	return "amazonia_" + window.Date(today).AddDate(0, 0, -2).Format("01-02-2006") + ".tsv"
}

// WeeklyFilename names the weekly NAS export after the week of month of the window start.
func WeeklyFilename(_ time.Time, w model.Window, _ string) string {
	return fmt.Sprintf("amazonia_week%d_%s.tsv", window.WeekOfMonth(w.Start), w.Start.Format("01-2006"))
}

// MonthlyFilename names the monthly NAS export after the covered month.
func MonthlyFilename(_ time.Time, w model.Window, _ string) string {
	return "amazonia_" + w.End.Format("01-2006") + ".tsv"
}

// SettlementFilename names a settlement export after its data window and report id.
func SettlementFilename(_ time.Time, w model.Window, reportID string) string {
	return fmt.Sprintf("disb_%s_%s_%s.tsv", w.Start.Format("01-02-2006"), w.End.Format("01-02-2006"), reportID)
}

// ShipmentFilename names a shipment item export.
func ShipmentFilename(_ time.Time, _ model.Window, shipmentID string) string {
	return "shipment_" + shipmentID + ".tsv"
}
