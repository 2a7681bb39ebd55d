package export

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/johnfercher/maroto/pkg/color"
	"github.com/johnfercher/maroto/pkg/consts"
	"github.com/johnfercher/maroto/pkg/pdf"
	"github.com/johnfercher/maroto/pkg/props"
)

// PDF renders the report as an A4 table.
func PDF(r Report) (*bytes.Buffer, error) {
	m := pdf.NewMaroto(consts.Portrait, consts.A4)
	m.SetPageMargins(20, 10, 20)

	m.RegisterHeader(func() {
		m.Row(10, func() {
			m.Col(12, func() {
				m.Text(r.Title, props.Text{Top: 3, Style: consts.Bold, Align: consts.Center, Size: 16})
			})
		})
		m.Row(10, func() {
			m.Col(12, func() {
				m.Text(r.period(), props.Text{Top: 3, Style: consts.Normal, Align: consts.Center, Size: 12})
			})
		})
	})

	headers := []string{"Housekeeper", "Rooms", "Total min", "Average min"}
	grid := []uint{6, 2, 2, 2}
	var content [][]string
	for _, rw := range r.rows() {
		content = append(content, []string{
			rw.name,
			strconv.Itoa(rw.TotalRooms),
			strconv.Itoa(rw.TotalTime),
			strconv.Itoa(rw.AverageTime),
		})
	}
	if len(content) == 0 {
		content = [][]string{{"No completed assignments", "-", "-", "-"}}
	}

	m.TableList(headers, content, props.TableList{
		HeaderProp:           props.TableListContent{Size: 10, GridSizes: grid},
		ContentProp:          props.TableListContent{Size: 10, GridSizes: grid},
		Align:                consts.Center,
		AlternatedBackground: &color.Color{Red: 240, Green: 240, Blue: 240},
		HeaderContentSpace:   1,
	})

	rooms, minutes := r.totals()
	m.Row(20, func() {
		m.Col(12, func() {
			m.Text(fmt.Sprintf("Total: %d rooms, %d minutes", rooms, minutes), props.Text{
				Top: 10, Style: consts.Bold, Align: consts.Right, Size: 12,
			})
		})
	})

	out, err := m.Output()
	if err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return &out, nil
}
