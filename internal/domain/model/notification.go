package model

import "strings"

// Notification is a plain-text message for a list of recipients.
type Notification struct {
	Subject    string
	Body       string
	Recipients []string
}

// HasRecipients reports whether at least one non-blank recipient is set.
func (n Notification) HasRecipients() bool {
	for _, r := range n.Recipients {
		if strings.TrimSpace(r) != "" {
			return true
		}
	}
	return false
}

// DropFolderJob maps a local queue folder to a fixed remote file name.
type DropFolderJob struct {
	Name     string `yaml:"name"`
	FileName string `yaml:"file_name"`
	Folder   string `yaml:"folder"`
}

// ArchiveFolderName is the subfolder receiving uploaded files.
const ArchiveFolderName = "archive"
