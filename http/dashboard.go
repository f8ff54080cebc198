package http

import "net/http"

// handleDashboard serves the interactive prediction form. Static page, no
// templating needed.
func handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(dashboardHTML))
}

const dashboardHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Student Depression Risk</title>
<style>
body { font-family: -apple-system, "Segoe UI", sans-serif; max-width: 640px; margin: 2rem auto; padding: 0 1rem; color: #222; }
h1 { font-size: 1.4rem; }
form { display: grid; grid-template-columns: 1fr 1fr; gap: 0.8rem 1.2rem; }
label { display: flex; flex-direction: column; font-size: 0.85rem; gap: 0.25rem; }
input, select { padding: 0.4rem; border: 1px solid #bbb; border-radius: 4px; }
button { grid-column: 1 / -1; padding: 0.6rem; border: 0; border-radius: 4px; background: #2a6fdb; color: #fff; font-size: 1rem; cursor: pointer; }
#result { margin-top: 1.2rem; padding: 1rem; border-radius: 4px; display: none; }
#result.ok { display: block; background: #e8f5e9; }
#result.risk { display: block; background: #fdecea; }
#result.error { display: block; background: #fff3e0; }
#feed { margin-top: 1.5rem; font-size: 0.8rem; color: #666; }
#feed li { margin: 0.2rem 0; }
</style>
</head>
<body>
<h1>Student Depression Risk</h1>
<form id="predict">
  <label>Age <input name="Age" type="number" min="15" max="30" value="20" required></label>
  <label>Gender
    <select name="Gender">
      <option>Male</option>
      <option>Female</option>
    </select>
  </label>
  <label>Department
    <select name="Department">
      <option>Science</option>
      <option>Engineering</option>
      <option>Medical</option>
      <option>Arts</option>
      <option>Business</option>
    </select>
  </label>
  <label>CGPA <input name="CGPA" type="number" min="0" max="4" step="0.01" value="3.5" required></label>
  <label>Sleep hours <input name="Sleep_Duration" type="number" min="0" max="15" step="0.1" value="7" required></label>
  <label>Study hours <input name="Study_Hours" type="number" min="0" max="15" step="0.1" value="4" required></label>
  <label>Social media hours <input name="Social_Media_Hours" type="number" min="0" max="15" step="0.1" value="2" required></label>
  <label>Physical activity (min/week) <input name="Physical_Activity" type="number" min="0" max="200" value="100" required></label>
  <label>Stress level (0-10) <input name="Stress_Level" type="number" min="0" max="10" value="3" required></label>
  <button type="submit">Predict</button>
</form>
<div id="result"></div>
<div id="feed"><strong>Live predictions</strong><ul id="events"></ul></div>
<script>
const numeric = ["Age", "CGPA", "Sleep_Duration", "Study_Hours", "Social_Media_Hours", "Physical_Activity", "Stress_Level"];
const ints = ["Age", "Physical_Activity", "Stress_Level"];
const result = document.getElementById("result");

document.getElementById("predict").addEventListener("submit", async (e) => {
  e.preventDefault();
  const data = Object.fromEntries(new FormData(e.target));
  for (const k of numeric) data[k] = ints.includes(k) ? parseInt(data[k], 10) : parseFloat(data[k]);
  try {
    const resp = await fetch("/api/predict", {
      method: "POST",
      headers: {"Content-Type": "application/json"},
      body: JSON.stringify(data),
    });
    const body = await resp.json();
    if (!resp.ok) {
      result.className = "error";
      result.textContent = body.error + (body.fields ? ": " + body.fields.join(", ") : "");
      return;
    }
    result.className = body.prediction === 1 ? "risk" : "ok";
    result.textContent = body.label + " (" + (body.probability_depression * 100).toFixed(1) + "% risk, model " + body.model_version + ")";
  } catch (err) {
    result.className = "error";
    result.textContent = "request failed: " + err;
  }
});

const events = document.getElementById("events");
function connect() {
  const ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/api/ws/predictions");
  ws.onmessage = (msg) => {
    const ev = JSON.parse(msg.data);
    const li = document.createElement("li");
    li.textContent = ev.timestamp + " " + ev.label + " (" + (ev.probability_depression * 100).toFixed(1) + "%)";
    events.prepend(li);
    while (events.children.length > 20) events.removeChild(events.lastChild);
  };
  ws.onclose = () => setTimeout(connect, 3000);
}
connect();
</script>
</body>
</html>
`
