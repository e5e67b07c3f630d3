package geomap

import (
	"html/template"
	"io"

	"github.com/paulmach/orb/geojson"
)

// LegendEntry is one row of the map legend.
type LegendEntry struct {
	Color string
	Label string
}

type leafletPage struct {
	Title   string
	Center  [2]float64
	Zoom    int
	GeoJSON template.JS
	Colors  []string
	Legend  []LegendEntry
	Tooltip []TooltipField
}

// TooltipField names a feature property shown on hover.
type TooltipField struct {
	Property string
	Label    string
	Suffix   string
}

var leafletTemplate = template.Must(template.New("map").Parse(`<!DOCTYPE html>
<html lang="tr">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<style>
html, body, #map { height: 100%; margin: 0; }
.legend { background: white; padding: 8px 10px; font: 13px sans-serif; line-height: 20px; border-radius: 4px; }
.legend i { width: 16px; height: 16px; float: left; margin-right: 8px; opacity: 0.8; }
</style>
</head>
<body>
<div id="map"></div>
<script>
var data = {{.GeoJSON}};
var colors = [{{range $i, $c := .Colors}}{{if $i}}, {{end}}{{$c}}{{end}}];
var fields = [{{range $i, $f := .Tooltip}}{{if $i}}, {{end}}[{{$f.Property}}, {{$f.Label}}, {{$f.Suffix}}]{{end}}];

var map = L.map('map').setView([{{index .Center 0}}, {{index .Center 1}}], {{.Zoom}});
L.tileLayer('https://{s}.basemap.cartocdn.com/light_all/{z}/{x}/{y}{r}.png', {
  attribution: '&copy; OpenStreetMap &copy; CARTO'
}).addTo(map);

function colorFor(c) {
  return c < 0 ? '#d3d3d3' : colors[c % colors.length];
}

L.geoJSON(data, {
  style: function (f) {
    return { fillColor: colorFor(f.properties.Cluster), weight: 1, color: 'white', fillOpacity: 0.7 };
  },
  onEachFeature: function (f, layer) {
    var p = f.properties;
    var html = '<b>' + p.City_Label + '</b><br>' + p.Cluster_Label;
    fields.forEach(function (fd) {
      if (p[fd[0]] !== undefined) {
        html += '<br>' + fd[1] + ': ' + p[fd[0]] + fd[2];
      }
    });
    layer.bindTooltip(html, { sticky: true });
  }
}).addTo(map);

var legend = L.control({ position: 'bottomright' });
legend.onAdd = function () {
  var div = L.DomUtil.create('div', 'legend');
  div.innerHTML = '<b>{{.Title}}</b><br>'{{range .Legend}} +
    '<i style="background:' + {{.Color}} + '"></i>' + {{.Label}} + '<br>'{{end}};
  return div;
};
legend.addTo(map);
</script>
</body>
</html>
`))

// WriteLeaflet renders fc as a standalone Leaflet page.
func WriteLeaflet(w io.Writer, fc *geojson.FeatureCollection, title string, center [2]float64, zoom int, colors []string, legend []LegendEntry, tooltip []TooltipField) error {
	data, err := fc.MarshalJSON()
	if err != nil {
		return err
	}
	return leafletTemplate.Execute(w, leafletPage{
		Title:   title,
		Center:  center,
		Zoom:    zoom,
		GeoJSON: template.JS(data),
		Colors:  colors,
		Legend:  legend,
		Tooltip: tooltip,
	})
}
