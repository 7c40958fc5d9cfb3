package cmd

// HELP_TEMPL lists the commands one per line under the app description.
const HELP_TEMPL = `{{.Name}} - {{.Usage}}

Usage:
        {{if .UsageText}}{{.UsageText}}{{else}}{{.HelpName}} <command> [arguments...]{{end}}
{{if .Description}}
{{.Description}}
{{end}}{{if .VisibleCommands}}
Commands:{{range .VisibleCommands}}
  {{index .Names 0}}{{"\t"}}{{.Usage}}{{end}}
{{end}}
Run "{{.HelpName}} help <command>" to see the flags of a command.

`

// CMD_HELP_TEMPL is shared by every command and subcommand.
const CMD_HELP_TEMPL = `{{.HelpName}} - {{.Usage}}

Usage:
        {{.HelpName}}{{if .VisibleFlags}} [flags]{{end}}{{if .ArgsUsage}} {{.ArgsUsage}}{{end}}
{{if .Description}}
{{.Description}}
{{end}}{{if .VisibleFlags}}
Flags:{{range .VisibleFlags}}
  {{.}}{{end}}
{{end}}
`
