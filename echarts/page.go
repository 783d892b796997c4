package echarts

import (
	"io"

	"github.com/go-echarts/go-echarts/v2/components"
)

// RenderPage writes a standalone HTML page holding charts.
func RenderPage(w io.Writer, title string, charts ...components.Charter) error {
	page := components.NewPage()
	page.PageTitle = title
	page.SetLayout(components.PageFlexLayout)
	page.AddCharts(charts...)
	return page.Render(w)
}
