// Package recall normalizes raw file listings into recall notice
// descriptors.
package recall

import "strings"

// File is one entry from a file-listing provider. MimeType is optional:
// FTP listings do not carry one.
type File struct {
	ID       string
	Name     string
	MimeType string
}

// Descriptor identifies a recall notice by its display name.
type Descriptor struct {
	Name string
}

// ListPDFs filters a raw listing down to recall documents. Only the file
// name is consulted — the ".pdf" suffix is the one policy that behaves the
// same for every provider, MIME type or not.
func ListPDFs(files []File) []Descriptor {
	var out []Descriptor
	for _, f := range files {
		if strings.HasSuffix(strings.ToLower(f.Name), ".pdf") {
			out = append(out, Descriptor{Name: f.Name})
		}
	}
	return out
}
