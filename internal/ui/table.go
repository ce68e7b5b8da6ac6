package ui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/muurk/routerctl/internal/router"
)

// accessColumn is the index of the access column in both device tables
const accessColumn = 4

// RenderDeviceTable renders GetAttachDevice results as a table
func RenderDeviceTable(devices []router.Device) string {
	rows := make([][]string, 0, len(devices))
	for i := range devices {
		d := &devices[i]
		rows = append(rows, []string{
			d.IP,
			d.Name,
			d.MAC,
			d.FormatLink(),
			string(d.AllowOrBlock),
		})
	}

	return renderTable([]string{"IP", "NAME", "MAC", "LINK", "ACCESS"}, rows)
}

// RenderDeviceDetailTable renders GetAttachDevice2 results as a table
func RenderDeviceDetailTable(devices []router.DeviceDetail) string {
	rows := make([][]string, 0, len(devices))
	for i := range devices {
		d := &devices[i]
		rows = append(rows, []string{
			d.IP,
			d.Name,
			d.MAC,
			d.FormatLink(),
			string(d.AllowOrBlock),
			d.SSID,
			strconv.Itoa(d.QosPriority),
			fmt.Sprintf("%.2f / %.2f", d.Upload, d.Download),
		})
	}

	return renderTable([]string{"IP", "NAME", "MAC", "LINK", "ACCESS", "SSID", "QOS", "UP / DOWN"}, rows)
}

func renderTable(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(MutedColor)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeaderStyle
			}
			if col == accessColumn && row >= 0 && row < len(rows) {
				return accessStyle(rows[row][col])
			}
			return TableCellStyle
		})

	return t.String()
}

func accessStyle(value string) lipgloss.Style {
	switch router.AccessState(value) {
	case router.AccessAllow:
		return AllowedStyle
	case router.AccessBlock:
		return BlockedStyle
	default:
		return TableCellStyle
	}
}
