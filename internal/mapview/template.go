package mapview

// pageTemplate is the self-contained plant map page.
// Plant groups arrive as JSON in #plant-data and are turned into clusters client side.
const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
<link rel="stylesheet" href="https://unpkg.com/leaflet.markercluster@1.5.3/dist/MarkerCluster.css">
<link rel="stylesheet" href="https://unpkg.com/leaflet.markercluster@1.5.3/dist/MarkerCluster.Default.css">
<link rel="stylesheet" href="https://cdnjs.cloudflare.com/ajax/libs/font-awesome/6.5.1/css/all.min.css">
<style>
  html, body { margin: 0; padding: 0; height: 100%; }
  #map { position: absolute; top: 0; bottom: 0; left: 0; right: 0; }
  .plant-icon { background: none; border: none; text-align: center; text-shadow: 0 0 2px #333; }
  .legend {
    position: fixed; bottom: 50px; right: 50px; width: 150px;
    border: 2px solid grey; z-index: 9999; background-color: white;
    padding: 10px; font-size: 14px;
  }
  .legend p { margin: 4px 0; }
</style>
</head>
<body>
<div id="map"></div>
<div class="legend">
{{- range .Legend}}
  <p><i class="fa {{.Glyph}} fa-lg" style="color: {{.Color}}"></i> {{.Label}}</p>
{{- end}}
</div>
<script type="application/json" id="plant-data">{{.Data}}</script>
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<script src="https://unpkg.com/leaflet.markercluster@1.5.3/dist/leaflet.markercluster.js"></script>
<script>
(function () {
  var map = L.map('map').setView([{{.CenterLat}}, {{.CenterLon}}], {{.Zoom}});
  L.tileLayer('https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png', {
    maxZoom: 18,
    attribution: '&copy; OpenStreetMap contributors'
  }).addTo(map);

  function escapeHTML(s) {
    var div = document.createElement('div');
    div.textContent = s;
    return div.innerHTML;
  }

  var groups = JSON.parse(document.getElementById('plant-data').textContent);
  var overlays = {};
  groups.forEach(function (g) {
    var cluster = L.markerClusterGroup();
    g.plants.forEach(function (p) {
      var icon = L.divIcon({
        className: 'plant-icon',
        html: '<i class="fa ' + g.glyph + '" style="color: ' + g.color + '; font-size: ' + p.size + 'px"></i>',
        iconSize: [p.size, p.size],
        iconAnchor: [p.size / 2, p.size / 2]
      });
      var popup = '<b>' + escapeHTML(p.name) + '</b><br>' +
        'Country: ' + escapeHTML(p.country) + '<br>' +
        'Type: ' + escapeHTML(p.technology) + '<br>' +
        'Capacity: ' + p.capacity_mw.toFixed(1) + ' MW<br>' +
        'Commission Year: ' + (p.commission_year ? p.commission_year : 'Unknown');
      L.marker([p.lat, p.lon], {icon: icon}).bindPopup(popup).addTo(cluster);
    });
    cluster.addTo(map);
    overlays[g.name] = cluster;
  });
  L.control.layers(null, overlays, {collapsed: false}).addTo(map);
})();
</script>
</body>
</html>
`
