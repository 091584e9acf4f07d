package http

// mapPage is the Leaflet shell. It starts focused on London at a zoom that
// shows most of the country, loads /closures.geojson, and draws one polyline
// per closure with the colour, opacity, and tooltip the feed provides.
const mapPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>Road Closures</title>
  <link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
  <script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
  <style>
    html, body, #map { height: 100%; margin: 0; }
    .closure-tooltip { font-family: Arial, sans-serif; font-size: 14px; line-height: 1.4; }
  </style>
</head>
<body>
  <div id="map"></div>
  <script>
    const map = L.map("map").setView([51.509865, -0.118092], 7);
    L.tileLayer("https://tile.openstreetmap.org/{z}/{x}/{y}.png", {
      attribution: "&copy; OpenStreetMap contributors"
    }).addTo(map);

    fetch("/closures.geojson")
      .then((resp) => resp.json())
      .then((fc) => {
        L.geoJSON(fc, {
          style: (f) => ({
            color: f.properties.colour,
            weight: 5,
            opacity: f.properties.opacity
          }),
          onEachFeature: (f, layer) => {
            layer.bindTooltip(
              '<div class="closure-tooltip">' + f.properties.tooltip + "</div>",
              { sticky: true }
            );
          }
        }).addTo(map);
      });
  </script>
</body>
</html>
`
