// Package viz holds the lipgloss styles and small terminal renderings
// shared by the CLI and the explorer: a pH scale coloured like universal
// indicator, sparklines for curves and bars for current fractions.
//
// Five colour themes are built in; SetTheme switches the active one.
package viz
