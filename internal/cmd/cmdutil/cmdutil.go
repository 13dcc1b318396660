// Package cmdutil provides helpers shared by kepmap commands.
package cmdutil

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/kepmap/internal/appcontext"
	"github.com/agentstation/kepmap/internal/cmd/output"
	"github.com/agentstation/kepmap/internal/matcher"
)

// Format resolves the output format from the app configuration, detecting
// the terminal when none is set.
func Format(app appcontext.Interface) (output.Format, error) {
	f, err := output.ParseFormat(app.OutputFormat())
	if err != nil {
		return "", err
	}
	if f == "" {
		return output.DetectFormat(""), nil
	}
	return f, nil
}

// Print writes data to the command's output. tableData builds the table view
// and may be nil to let the formatter render data directly.
func Print(cmd *cobra.Command, app appcontext.Interface, data any, tableData func(wide bool) output.Data) error {
	f, err := Format(app)
	if err != nil {
		return err
	}
	var td *output.Data
	if tableData != nil && f.IsTable() {
		d := tableData(f == output.FormatWide)
		td = &d
	}
	return output.Print(cmd.OutOrStdout(), f, data, td)
}

// SplitPatterns flattens repeated list flags ("a,b" "c") into items. Commas
// inside regex groups such as {1,3} do not split.
func SplitPatterns(values []string) []string {
	var out []string
	for _, v := range values {
		out = append(out, matcher.SplitList(v)...)
	}
	return out
}
