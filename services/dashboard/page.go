package dashboard

import (
	"html/template"

	"sensordash/drivers/max31865"
	"sensordash/types"
)

// page is the template model. Values are preformatted so that absent
// readings render as the literal N/A.
type page struct {
	HTUTemp  string
	Humidity string
	RTDTemp  string

	Reason string
	At     string
	Fault  string
	// Stale is set when the sampler did not answer in time.
	Stale bool

	HTULog []float64
	HumLog []float64
	RTDLog []float64
	Labels []int
}

func newPage(st types.State, stale bool) page {
	r := st.Readings
	p := page{
		HTUTemp:  r.HTUTemp.Format(2),
		Humidity: r.Humidity.Format(2),
		RTDTemp:  r.RTDTemp.Format(2),
		Reason:   string(r.Reason),
		Stale:    stale,
		HTULog:   nonNil(st.History[types.ChanHTUTemp]),
		HumLog:   nonNil(st.History[types.ChanHumidity]),
		RTDLog:   nonNil(st.History[types.ChanRTDTemp]),
	}
	if !r.At.IsZero() {
		p.At = r.At.Format("15:04:05")
	}
	if f := max31865.Fault(r.Fault); f.Active() {
		p.Fault = f.String()
	}
	n := max(len(p.HTULog), len(p.HumLog), len(p.RTDLog))
	p.Labels = make([]int, n)
	for i := range p.Labels {
		p.Labels[i] = i + 1
	}
	return p
}

func nonNil(xs []float64) []float64 {
	if xs == nil {
		return []float64{}
	}
	return xs
}

var pageTmpl = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>Sensor Dashboard</title>
  <script src="https://cdn.jsdelivr.net/npm/chart.js"></script>
  <style>
    body { background-color: #1e1e2f; color: #f0f0f5; font-family: sans-serif; text-align: center; padding: 2rem; }
    h1 { color: #ff89bb; }
    canvas { background: #ffffff10; border-radius: 10px; margin-top: 20px; }
    button { background: #ff5f87; color: white; border: none; padding: 10px 20px; border-radius: 8px; cursor: pointer; margin: 10px; }
    .meta { color: #9090a0; font-size: 0.8rem; }
  </style>
</head>
<body>
  <h1>Sensor Dashboard</h1>
  <p>Temperature (HTU21D): <strong id="htu_temp">{{.HTUTemp}}°C</strong></p>
  <p>Humidity (HTU21D): <strong id="humidity">{{.Humidity}}%</strong></p>
  <p>RTD temperature (MAX31865): <strong id="rtd_temp">{{.RTDTemp}}°C</strong></p>
  {{- if .Fault}}
  <p class="meta">RTD fault: {{.Fault}}</p>
  {{- end}}
  {{- if .Stale}}
  <p class="meta">sampler not responding</p>
  {{- else}}
  <p class="meta">{{.Reason}} {{.At}}</p>
  {{- end}}

  <form action="/refresh"><button>Refresh</button></form>
  <canvas id="chart" width="400" height="200"></canvas>
  <script>
    const htuTemp = {{.HTULog}};
    const hum = {{.HumLog}};
    const rtdTemp = {{.RTDLog}};
    new Chart(document.getElementById('chart').getContext('2d'), {
      type: 'line',
      data: {
        labels: {{.Labels}},
        datasets: [
          { label: 'HTU temperature (°C)', data: htuTemp, borderColor: '#ff6384', backgroundColor: 'rgba(255,99,132,0.2)', fill: true },
          { label: 'Humidity (%)', data: hum, borderColor: '#36a2eb', backgroundColor: 'rgba(54,162,235,0.2)', fill: true },
          { label: 'RTD temperature (°C)', data: rtdTemp, borderColor: '#ffcc00', backgroundColor: 'rgba(255,204,0,0.2)', fill: true }
        ]
      },
      options: { responsive: true, scales: { y: { beginAtZero: false } } }
    });
    setInterval(() => location.reload(), 5000);
  </script>
</body>
</html>
`))
