package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/fanctrl/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"pct": func(f float64) string {
		return fmt.Sprintf("%.1f%%", f*100)
	},
	"temp": func(f float64) string {
		return fmt.Sprintf("%.2f°C", f)
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Fan Controller</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.running { color: green; font-weight: bold; }
.stopped { color: #888; }
.forcemax { color: red; font-weight: bold; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Fan Controller</h1>

<h2>Fan</h2>
<table>
<tr><th>Mode</th><td class="{{if eq (printf "%s" .Mode) "FORCE_MAX"}}forcemax{{else if gt .Duty 0.0}}running{{else}}stopped{{end}}">{{.Mode}}</td></tr>
<tr><th>Temperature</th><td>{{if .HasSample}}{{temp .Temperature}}{{else}}no sample yet{{end}}</td></tr>
<tr><th>Duty Cycle</th><td>{{pct .Duty}}</td></tr>
{{if .RPM}}<tr><th>Fan Speed</th><td>{{.RPM}} RPM</td></tr>{{end}}
<tr><th>Ready</th><td>{{if .HasSample}}yes{{else}}no{{end}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}} — {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>Event Counts</h2>
<table>
<tr><th>Fan Starts</th><td>{{.Counts.Starts}}</td></tr>
<tr><th>Fan Stops</th><td>{{.Counts.Stops}}</td></tr>
<tr><th>Force Max</th><td>{{.Counts.ForceMax}}</td></tr>
<tr><th>Sensor Errors</th><td>{{.Counts.SensorErrors}}</td></tr>
<tr><th>Actuator Errors</th><td>{{.Counts.ActuatorErrors}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Sample Interval</th><td>{{.Config.IntervalMs}}ms</td></tr>
<tr><th>Curve</th><td>{{.Config.Curve}}</td></tr>
<tr><th>Lag Window</th><td>{{.Config.LagCycles}} cycles</td></tr>
<tr><th>Max Speed After</th><td>{{.Config.MaxSpeedCycles}} cycles</td></tr>
<tr><th>PWM Frequency</th><td>{{.Config.PWMFrequencyHz}}Hz</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	indexTmpl.Execute(w, data)
}
