package remote

import "net/http"

const indexHTML = `<!DOCTYPE html>
<html>
<head>
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <title>Interval Timer</title>
    <style>
        body { font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; text-align: center; }
        #label { font-size: 1.4em; margin: 10px 0; }
        #time { font-size: 5em; font-weight: bold; font-variant-numeric: tabular-nums; }
        #next, #position { color: #666; margin: 8px 0; }
        .bar { height: 10px; background: #e0e0e0; border-radius: 5px; overflow: hidden; margin: 15px 0; }
        .bar div { height: 100%; background: #333; width: 0; }
        button { padding: 14px 24px; margin: 5px; font-size: 1.1em; cursor: pointer; }
    </style>
</head>
<body>
    <div id="label">-</div>
    <div id="time">0:00</div>
    <div id="next">Next: -</div>
    <div id="position"></div>
    <div class="bar"><div id="progress"></div></div>
    <div id="elapsed"></div>
    <button onclick="send('toggle')">Start / Pause</button>
    <button onclick="send('reset')">Reset</button>
    <script>
        function render(s) {
            document.getElementById('label').textContent = s.contextualLabel || '-';
            document.getElementById('time').textContent = s.timeLeftText;
            document.getElementById('next').textContent = 'Next: ' + (s.nextLabel || '-');
            document.getElementById('position').textContent = s.position;
            document.getElementById('progress').style.width = s.progressPct + '%';
            document.getElementById('elapsed').textContent = s.elapsedText + ' / ' + s.capText;
        }

        function refresh() {
            fetch('/api/state').then(r => r.json()).then(render);
        }

        function send(op) {
            fetch('/api/' + op, {method: 'POST'}).then(r => r.json()).then(render);
        }

        refresh();
        setInterval(refresh, 500);
    </script>
</body>
</html>`

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(indexHTML))
}
