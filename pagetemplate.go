package main

import "html/template"

type graphTemplateData struct {
	Title string
	Nodes template.JS
	Edges template.JS
	Error string
}

var graphTemplate = template.Must(template.New("network").Parse(`<!doctype html>
<html>
<head>
<title>{{.Title}}</title>

<script type="text/javascript" src="https://cdnjs.cloudflare.com/ajax/libs/vis/4.21.0/vis.min.js"></script>
<link href="https://cdnjs.cloudflare.com/ajax/libs/vis/4.21.0/vis-network.min.css" rel="stylesheet" type="text/css" />

<style type="text/css">
#mynetwork {
width: 100%;
height: 95vh;
}
.error {
color: #c4332b;
}
</style>
</head>
<body>
{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
<div id="mynetwork"></div>

<script type="text/javascript">
new vis.Network(
document.getElementById('mynetwork'),
{nodes: new vis.DataSet({{.Nodes}}), edges: new vis.DataSet({{.Edges}})},
{layout: {hierarchical: {direction: "UD", sortMethod: "directed"}}});
</script>


</body>
</html>`))

type calendarTemplateData struct {
	Title string
	View  template.JS
}

var calendarTemplate = template.Must(template.New("calendar").Parse(`<!doctype html>
<html>
<head>
<title>{{.Title}}</title>
<script type="text/javascript" src="https://cdn.jsdelivr.net/npm/echarts@5/dist/echarts.min.js"></script>
<style type="text/css">
#calendar {
width: 100%;
height: 95vh;
}
</style>
</head>
<body>
<div id="calendar"></div>

<script type="text/javascript">
const view = {{.View}};
const g = view.glyphs;
view.option.series[0].renderItem = function (params, api) {
  const cellPoint = api.coord(api.value(0));
  if (isNaN(cellPoint[0]) || isNaN(cellPoint[1])) {
    return;
  }
  const cellHeight = params.coordSys.cellHeight;
  const value = api.value(1);
  const events = value ? String(value).split("|") : [];
  const offsets = g.offsets[events.length] || [];
  const children = offsets.map(function (o, i) {
    const glyph = g.glyphs[+events[i]];
    return {
      type: "path",
      shape: { pathData: glyph.path, x: -g.size / 2, y: -g.size / 2, width: g.size, height: g.size },
      position: [cellPoint[0] + o.x, cellPoint[1] + o.y],
      style: api.style({ fill: glyph.color })
    };
  });
  children.push({
    type: "text",
    style: {
      x: cellPoint[0],
      y: cellPoint[1] - cellHeight / 2 + g.labelOffset,
      text: echarts.format.formatTime("dd", api.value(0)),
      fill: g.labelColor,
      textFont: api.font({ fontSize: 14 })
    }
  });
  return { type: "group", children: children };
};
echarts.init(document.getElementById("calendar")).setOption(view.option);
</script>
</body>
</html>`))

type indexLink struct {
	Path  string
	Title string
}

var indexTemplate = template.Must(template.New("index").Parse(`<!doctype html>
<html>
<head>
<title>flowviz</title>
</head>
<body>
<h1>flowviz</h1>
<ul>
{{range .}}<li><a href="{{.Path}}">{{.Title}}</a></li>
{{end}}</ul>
</body>
</html>`))
