package model

import (
	"fmt"
	"path"
	"strings"
	"time"
)

// JobKind is the tag of the job descriptor variant.
//
//nolint:recvcheck // UnmarshalText needs pointer receiver, Valid needs value receiver
type JobKind string

const (
	// JobKindDaily requests the previous day's ledger report.
	JobKindDaily JobKind = "daily"
	// JobKindWeekly requests the last Tuesday..Monday ledger report.
	JobKindWeekly JobKind = "weekly"
	// JobKindMonthly requests the previous calendar month.
	JobKindMonthly JobKind = "monthly"
	// JobKindSettlements relays every finished settlement report not yet delivered.
	JobKindSettlements JobKind = "settlements"
	// JobKindShipments relays inbound shipment item lists not yet delivered.
	JobKindShipments JobKind = "shipments"
)

// Valid returns true if the kind is one of the supported variants.
func (k JobKind) Valid() bool {
	switch k {
	case JobKindDaily, JobKindWeekly, JobKindMonthly, JobKindSettlements, JobKindShipments:
		return true
	default:
		return false
	}
}

// IsReport reports whether the kind requests a fresh report and awaits it.
func (k JobKind) IsReport() bool {
	return k == JobKindDaily || k == JobKindWeekly || k == JobKindMonthly
}

// UnmarshalText implements encoding.TextUnmarshaler for env and yaml parsing.
func (k *JobKind) UnmarshalText(text []byte) error {
	v := JobKind(strings.ToLower(strings.TrimSpace(string(text))))
	if !v.Valid() {
		return fmt.Errorf("invalid JobKind: %q", v)
	}
	*k = v
	return nil
}

// ItemPolicy controls how list-based jobs react to a failing item.
//
//nolint:recvcheck // UnmarshalText needs pointer receiver, Valid needs value receiver
type ItemPolicy string

const (
	// ItemPolicyFailFast aborts the run on the first failing item.
	ItemPolicyFailFast ItemPolicy = "fail-fast"
	// ItemPolicyBestEffort logs the failing item and continues with the rest.
	ItemPolicyBestEffort ItemPolicy = "best-effort"
)

// Valid returns true for known policies.
func (p ItemPolicy) Valid() bool {
	return p == ItemPolicyFailFast || p == ItemPolicyBestEffort
}

// UnmarshalText implements encoding.TextUnmarshaler for env parsing.
func (p *ItemPolicy) UnmarshalText(text []byte) error {
	v := ItemPolicy(strings.ToLower(strings.TrimSpace(string(text))))
	if !v.Valid() {
		return fmt.Errorf("invalid ItemPolicy: %q (valid options: fail-fast, best-effort)", v)
	}
	*p = v
	return nil
}

// Window is an inclusive range of calendar dates.
type Window struct {
	Start time.Time
	End   time.Time
}

// IsZero reports whether the window is unset.
func (w Window) IsZero() bool {
	return w.Start.IsZero() && w.End.IsZero()
}

// String renders the window as start..end dates.
func (w Window) String() string {
	if w.IsZero() {
		return ""
	}
	return w.Start.Format(time.DateOnly) + ".." + w.End.Format(time.DateOnly)
}

// WindowFunc computes the data window for a run happening on today.
type WindowFunc func(today time.Time) Window

// FilenameFunc names the delivered file. itemID is the report or shipment id
// for list-based jobs and empty for report jobs.
type FilenameFunc func(today time.Time, w Window, itemID string) string

// Destination is a directory on a named sink target.
type Destination struct {
	Target string
	Dir    string
}

// Path joins the destination directory and a file name using forward slashes.
func (d Destination) Path(filename string) string {
	dir := strings.ReplaceAll(strings.TrimSpace(d.Dir), `\`, "/")
	if dir == "" {
		return filename
	}
	return path.Join(dir, filename)
}

// ReportSpec holds the fixed request parameters for report jobs.
type ReportSpec struct {
	Type           ReportType
	MarketplaceIDs []string
	Options        map[string]string
	// EndPadDays is added to the window end when building the vendor request.
	EndPadDays int
}

// NotificationTemplate renders a completion email. "{filename}" is replaced
// with the delivered file name in both subject and body.
type NotificationTemplate struct {
	Subject    string
	Body       string
	Recipients []string
}

// Render produces the notification for a delivered file.
func (t NotificationTemplate) Render(filename string) Notification {
	r := strings.NewReplacer("{filename}", filename)
	return Notification{
		Subject:    r.Replace(t.Subject),
		Body:       r.Replace(t.Body),
		Recipients: append([]string(nil), t.Recipients...),
	}
}

// JobDescriptor parameterises one pipeline variant.
type JobDescriptor struct {
	Name        string
	Kind        JobKind
	Report      ReportSpec
	Window      WindowFunc
	Filename    FilenameFunc
	Destination Destination
	// ArchiveDir keeps a local copy of every delivered file when set.
	ArchiveDir string
	Ledger     string
	Notify     *NotificationTemplate
	Policy     ItemPolicy
}

// LedgerName returns the ledger partition, defaulting to the job name.
func (d JobDescriptor) LedgerName() string {
	if strings.TrimSpace(d.Ledger) != "" {
		return d.Ledger
	}
	return d.Name
}

// Validate checks that the descriptor can drive a pipeline run.
func (d JobDescriptor) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("job descriptor name is required")
	}
	if !d.Kind.Valid() {
		return fmt.Errorf("job %s: invalid kind %q", d.Name, d.Kind)
	}
	if d.Filename == nil {
		return fmt.Errorf("job %s: filename template is required", d.Name)
	}
	if d.Kind.IsReport() {
		if d.Window == nil {
			return fmt.Errorf("job %s: window policy is required", d.Name)
		}
		if d.Report.Type == "" {
			return fmt.Errorf("job %s: report type is required", d.Name)
		}
	}
	if d.Policy != "" && !d.Policy.Valid() {
		return fmt.Errorf("job %s: invalid item policy %q", d.Name, d.Policy)
	}
	return nil
}
