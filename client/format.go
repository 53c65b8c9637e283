package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/lakehouselib/lakehouse"
	"github.com/lakehouselib/lakehouse/output"
	"github.com/lakehouselib/lakehouse/table"
	"github.com/olekukonko/tablewriter"
)

var errorLabel = color.New(color.FgRed, color.Bold)

// Formatter formats command results for the terminal.
type Formatter interface {
	FormatSession(w io.Writer, session Session) error
	FormatRecord(w io.Writer, action string, record lakehouse.Record) error
	FormatDownload(w io.Writer, result *DownloadResult) error
	FormatResult(w io.Writer, result *output.Result) error
	FormatDataset(w io.Writer, name string, t *table.Table, content string) error
	FormatError(w io.Writer, err error) error
	FormatProfileList(w io.Writer, profiles []Profile, defaultName string, showSecrets bool) error
	FormatProfileShow(w io.Writer, profile Profile, isDefault, showSecrets bool) error
}

// NewFormatter returns the appropriate formatter based on flags.
func NewFormatter(jsonOutput, quiet bool) Formatter {
	if jsonOutput {
		return &JSONFormatter{}
	}
	return &HumanFormatter{Quiet: quiet}
}

// HumanFormatter outputs human-readable text.
type HumanFormatter struct {
	Quiet bool
}

// FormatSession prints who is logged in.
func (f *HumanFormatter) FormatSession(w io.Writer, session Session) error {
	if f.Quiet {
		return nil
	}
	_, _ = fmt.Fprintf(w, "Authenticated: %s (%s)\n", session.UserEmail, session.UserRole)
	_, _ = fmt.Fprintf(w, "  User ID: %s\n", session.UserID)
	return nil
}

// FormatRecord prints a record one field per line under an action line such
// as "Created collection".
func (f *HumanFormatter) FormatRecord(w io.Writer, action string, record lakehouse.Record) error {
	if f.Quiet {
		return nil
	}
	_, _ = fmt.Fprintln(w, action)
	for _, key := range record.Keys() {
		v, _ := record.Get(key)
		_, _ = fmt.Fprintf(w, "  %s: %s\n", key, table.Cell(v))
	}
	return nil
}

// FormatDownload prints where a file was written.
func (f *HumanFormatter) FormatDownload(w io.Writer, result *DownloadResult) error {
	if !f.Quiet {
		_, _ = fmt.Fprintf(w, "Downloaded: %s -> %s (%s)\n", result.FileID, result.Path, output.FormatSize(result.Size))
	}
	return nil
}

// FormatResult writes a listing in the mode it was produced in.
func (f *HumanFormatter) FormatResult(w io.Writer, result *output.Result) error {
	_, err := result.WriteTo(w)
	return err
}

// FormatDataset prints a loaded dataset as a grid, or its text for
// documents that are not tabular.
func (f *HumanFormatter) FormatDataset(w io.Writer, name string, t *table.Table, content string) error {
	if t == nil {
		_, err := io.WriteString(w, content)
		return err
	}

	grid := tablewriter.NewWriter(w)
	grid.SetHeader(t.Columns)
	for _, row := range t.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = table.Cell(v)
		}
		grid.Append(cells)
	}
	grid.SetAutoFormatHeaders(false)
	grid.Render()

	if !f.Quiet {
		_, _ = fmt.Fprintf(w, "\n%s: %d row(s)\n", name, t.Len())
	}
	return nil
}

// FormatError formats an error as human-readable text.
func (f *HumanFormatter) FormatError(w io.Writer, err error) error {
	_, _ = errorLabel.Fprint(w, "Error:")
	_, _ = fmt.Fprintf(w, " %v\n", err)
	return nil
}

// FormatProfileList formats a list of profiles as a grid. The default
// profile is marked with "*".
func (f *HumanFormatter) FormatProfileList(w io.Writer, profiles []Profile, defaultName string, showSecrets bool) error {
	grid := tablewriter.NewWriter(w)
	grid.SetHeader([]string{"", "NAME", "ENDPOINT", "EMAIL", "PASSWORD"})
	for i := range profiles {
		p := &profiles[i]
		marker := ""
		if p.Name == defaultName {
			marker = "*"
		}
		grid.Append([]string{marker, p.Name, p.Endpoint, p.Email, maskSecret(p.Password, showSecrets)})
	}
	grid.SetAutoFormatHeaders(false)
	grid.Render()
	return nil
}

// FormatProfileShow formats a single profile as human-readable text.
func (f *HumanFormatter) FormatProfileShow(w io.Writer, profile Profile, isDefault, showSecrets bool) error {
	_, _ = fmt.Fprintf(w, "Name:     %s", profile.Name)
	if isDefault {
		_, _ = fmt.Fprintf(w, " (default)")
	}
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "Endpoint: %s\n", profile.Endpoint)
	_, _ = fmt.Fprintf(w, "Email:    %s\n", profile.Email)
	_, _ = fmt.Fprintf(w, "Password: %s\n", maskSecret(profile.Password, showSecrets))
	return nil
}

// JSONFormatter outputs JSON.
type JSONFormatter struct{}

// FormatSession writes the session without its tokens.
func (f *JSONFormatter) FormatSession(w io.Writer, session Session) error {
	return writeJSON(w, struct {
		UserID    string `json:"user_id"`
		UserRole  string `json:"user_role"`
		UserEmail string `json:"user_email"`
	}{session.UserID, session.UserRole, session.UserEmail})
}

// FormatRecord writes the record with its keys in response order.
func (f *JSONFormatter) FormatRecord(w io.Writer, _ string, record lakehouse.Record) error {
	return writeJSON(w, record)
}

// FormatDownload formats download result as JSON.
func (f *JSONFormatter) FormatDownload(w io.Writer, result *DownloadResult) error {
	return writeJSON(w, result)
}

// FormatResult writes the records behind a listing whatever its mode.
func (f *JSONFormatter) FormatResult(w io.Writer, result *output.Result) error {
	switch {
	case result.Records != nil:
		return writeJSON(w, result.Records)
	case result.Table != nil:
		return writeJSON(w, result.Table.Records())
	default:
		_, err := io.WriteString(w, result.Text+"\n")
		return err
	}
}

// FormatDataset writes tabular datasets as a list of rows and documents as
// {"name", "content"}.
func (f *JSONFormatter) FormatDataset(w io.Writer, name string, t *table.Table, content string) error {
	if t == nil {
		return writeJSON(w, struct {
			Name    string `json:"name"`
			Content string `json:"content"`
		}{name, content})
	}
	return writeJSON(w, t.Records())
}

// FormatError formats an error as JSON.
func (f *JSONFormatter) FormatError(w io.Writer, err error) error {
	out := struct {
		Error  string `json:"error"`
		Status int    `json:"status,omitempty"`
	}{Error: err.Error()}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		out.Status = apiErr.StatusCode
	}
	return writeJSON(w, out)
}

// FormatProfileList formats a list of profiles as JSON.
func (f *JSONFormatter) FormatProfileList(w io.Writer, profiles []Profile, defaultName string, showSecrets bool) error {
	type jsonProfile struct {
		Name     string `json:"name"`
		Endpoint string `json:"endpoint"`
		Email    string `json:"email,omitempty"`
		Password string `json:"password,omitempty"`
		Default  bool   `json:"default,omitempty"`
	}

	out := struct {
		Profiles []jsonProfile `json:"profiles"`
	}{
		Profiles: make([]jsonProfile, len(profiles)),
	}

	for i := range profiles {
		p := &profiles[i]
		out.Profiles[i] = jsonProfile{
			Name:     p.Name,
			Endpoint: p.Endpoint,
			Email:    p.Email,
			Password: maskSecret(p.Password, showSecrets),
			Default:  p.Name == defaultName,
		}
	}

	return writeJSON(w, out)
}

// FormatProfileShow formats a single profile as JSON.
func (f *JSONFormatter) FormatProfileShow(w io.Writer, profile Profile, isDefault, showSecrets bool) error {
	return writeJSON(w, struct {
		Name     string `json:"name"`
		Endpoint string `json:"endpoint"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Default  bool   `json:"default"`
	}{
		Name:     profile.Name,
		Endpoint: profile.Endpoint,
		Email:    profile.Email,
		Password: maskSecret(profile.Password, showSecrets),
		Default:  isDefault,
	})
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// maskSecret shows the first and last two characters of a secret.
// Secrets of six characters or fewer are fully masked.
func maskSecret(secret string, showSecrets bool) string {
	if showSecrets {
		return secret
	}
	if secret == "" {
		return "(not set)"
	}
	if len(secret) <= 6 {
		return "******"
	}
	return secret[:2] + "..." + secret[len(secret)-2:]
}
