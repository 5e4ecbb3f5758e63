package dashboard

// dashboardTemplate is the HTML template for the dashboard page.
// It is embedded as a Go constant, so the binary has no external file
// dependencies beyond the static assets.
const dashboardTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<link rel="stylesheet" href="/static/app.css">
</head>
<body>

<!-- ═══════ HEADER ═══════ -->
<div class="header">
  <div class="header-left">
    <h1>{{.Title}}</h1>
    <p class="muted">Earnings and positioning timeline</p>
  </div>
  <div class="header-right">
    <p class="muted">{{.GeneratedAt}}</p>
    {{if .Version}}<p class="muted">v{{.Version}}</p>{{end}}
  </div>
</div>

<!-- ═══════ CONTROLS ═══════ -->
<form class="controls" method="GET" action="/">
  <label>Symbols
    <input type="text" name="symbols" value="{{.SymbolsParam}}" placeholder="AAPL, MSFT, NVDA">
  </label>
  <label>Min notional
    <input type="text" name="min_notional" value="{{.MinNotionalParam}}">
  </label>
  <button type="submit">Refresh</button>
</form>

<!-- ═══════ EARNINGS ═══════ -->
<div class="section">
  <h2>Upcoming Earnings</h2>
  {{if .EarningsRows}}
  <table>
    <thead>
      <tr><th>Symbol</th><th>Next Earnings</th><th>In</th><th>Status</th></tr>
    </thead>
    <tbody>
      {{range .EarningsRows}}
      {{if .Reason}}
      <tr class="missing"><td>{{.Symbol}}</td><td colspan="3" class="muted">{{.Reason}}</td></tr>
      {{else}}
      <tr class="{{.Class}}"><td>{{.Symbol}}</td><td>{{.DateText}}</td><td>{{.InText}}</td><td><span class="status-badge {{.Status}}">{{.Status}}</span></td></tr>
      {{end}}
      {{end}}
    </tbody>
  </table>
  {{else}}
  <p class="muted">No symbols selected.</p>
  {{end}}
</div>

<!-- ═══════ POSITIONS ═══════ -->
<div class="section">
  <h2>Positioning</h2>
  {{if .UploadText}}<p class="muted">{{.UploadText}}</p>{{end}}
  {{if .DroppedRows}}
  <details class="dropped">
    <summary>{{len .DroppedRows}} row(s) dropped</summary>
    <ul>
      {{range .DroppedRows}}<li>line {{.Line}}: {{.Reason}}</li>{{end}}
    </ul>
  </details>
  {{end}}
  <form class="upload" method="POST" action="/upload" enctype="multipart/form-data">
    <input type="hidden" name="symbols" value="{{.SymbolsParam}}">
    <input type="hidden" name="min_notional" value="{{.MinNotionalParam}}">
    <input type="file" name="file" accept=".csv" required>
    <button type="submit">Upload CSV</button>
  </form>
  <p class="muted">
    <a href="/template.csv">Download CSV template</a>
    {{if .HasPositions}} · {{.PositionCount}} loaded{{end}}
  </p>
  {{if .HasPositions}}
  <form class="clear" method="POST" action="/clear">
    <input type="hidden" name="symbols" value="{{.SymbolsParam}}">
    <input type="hidden" name="min_notional" value="{{.MinNotionalParam}}">
    <button type="submit">Clear positions</button>
  </form>
  {{end}}
</div>

<!-- ═══════ TIMELINE ═══════ -->
<div class="section">
  <h2>Timeline</h2>
  <div class="chart-container">{{.ChartSVG}}</div>
  {{if .TimelineRows}}
  <table id="timeline">
    <thead>
      <tr><th class="sortable" data-sort="date">Date</th><th>Symbol</th><th>Type</th><th>Size</th><th>Details</th></tr>
    </thead>
    <tbody>
      {{range .TimelineRows}}
      <tr class="{{.Class}}"><td>{{.DateText}}</td><td>{{.Symbol}}</td><td>{{.EventType}}</td><td>{{.SizeText}}</td><td class="muted">{{.Details}}</td></tr>
      {{end}}
    </tbody>
  </table>
  {{else}}
  <p class="muted">No events above the threshold. Upload positions or adjust the filter.</p>
  {{end}}
</div>

<!-- ═══════ NEWS ═══════ -->
{{if .ShowNews}}
<div class="section">
  <h2>Headlines</h2>
  <ul class="headlines">
    {{range .Headlines}}
    <li><span class="ticker-badge">{{.Symbol}}</span> <a href="{{.URL}}" target="_blank" rel="noopener">{{.Title}}</a> <span class="muted">{{.Source}} · {{.PublishedText}}</span></li>
    {{end}}
  </ul>
</div>
{{end}}

<!-- ═══════ FOOTER ═══════ -->
<div class="footer">
  <p>Earnings dates via Yahoo Finance. Estimated dates can move; confirm before trading around them.</p>
</div>

<script src="/static/app.js"></script>
</body>
</html>`
