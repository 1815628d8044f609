package web

import (
	"log/slog"
	"net/http"
)

const page = `<!DOCTYPE html>
<html>
<head>
    <title>Game of Sticks</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        .board { max-width: 640px; margin: 0 auto; text-align: center; }
        #sticks-panel { min-height: 60px; margin: 20px 0; }
        .stick { display: inline-block; width: 6px; height: 50px; margin: 0 3px; background: #8b5a2b; transition: opacity 0.4s; }
        .stick.fading { opacity: 0.2; }
        #play-buttons button { padding: 10px 20px; margin: 5px; font-size: 16px; }
        #gameplay { text-align: left; }
        .entry { padding: 6px 10px; margin: 4px 0; border-radius: 4px; transition: opacity 0.4s; }
        .entry.player { background: #d9edf7; }
        .entry.computer { background: #f2dede; }
        .entry.leaving { opacity: 0.2; }
        #end-modal { display: none; position: fixed; inset: 0; background: rgba(0,0,0,0.5); }
        #end-modal .dialog { background: #fff; max-width: 320px; margin: 120px auto; padding: 20px; border-radius: 6px; }
        #alert { color: #a94442; margin: 10px 0; }
    </style>
</head>
<body>
    <div class="board">
        <h1>Game of Sticks</h1>
        <div>Sticks left: <span id="sticks-number">-</span></div>
        <div id="sticks-panel"></div>
        <div id="play-buttons">
            <button data-amount="1" disabled>1</button>
            <button data-amount="2" disabled>2</button>
            <button data-amount="3" disabled>3</button>
        </div>
        <div id="alert"></div>
        <div id="gameplay"></div>
    </div>
    <div id="end-modal" tabindex="-1">
        <div class="dialog">
            <h2 id="dialog-message-headline"></h2>
            <p id="dialog-message-details">You took the last stick.</p>
            <button class="btn-primary">Play again</button>
        </div>
    </div>

    <script>
        const scheme = location.protocol === 'https:' ? 'wss://' : 'ws://';
        const ws = new WebSocket(scheme + location.host + '/api/ws');
        let fading = 0;
        let leaving = [];

        function send(type, data) {
            ws.send(JSON.stringify({ type: type, data: data }));
        }

        ws.onmessage = function(event) {
            const msg = JSON.parse(event.data);
            if (msg.type === 'frame') {
                applyFrame(msg.data);
            } else if (msg.type === 'error') {
                console.log('viewer error', msg.data);
            }
        };

        ws.onclose = function() {
            document.getElementById('alert').textContent = 'Disconnected from the game. Try to refresh the page.';
        };

        function applyFrame(frame) {
            const effect = frame.effect;
            switch (effect.kind) {
                case 'reset': fading = 0; leaving = []; break;
                case 'sticks_fade': fading += effect.sticks; break;
                case 'sticks_gone': fading = Math.max(0, fading - effect.sticks); break;
                case 'entry_out': leaving.push(effect.entry); break;
                case 'entry_gone': leaving.shift(); break;
            }
            render(frame.state);
        }

        function entryText(e) {
            const who = e.move.actor === 'computer' ? 'Computer' : 'You';
            return who + ' took ' + e.move.amount + ' stick' + (e.move.amount > 1 ? 's' : '') + '. The pile now has ' + e.total;
        }

        function render(state) {
            document.getElementById('sticks-number').textContent = state.pile;

            const panel = document.getElementById('sticks-panel');
            panel.innerHTML = '';
            for (let i = 0; i < state.pile + fading; i++) {
                const s = document.createElement('div');
                s.className = i < state.pile ? 'stick' : 'stick fading';
                panel.appendChild(s);
            }

            (state.buttons || []).forEach(function(b) {
                const btn = document.querySelector('#play-buttons button[data-amount="' + b.amount + '"]');
                btn.disabled = !b.enabled;
            });

            const feed = document.getElementById('gameplay');
            feed.innerHTML = '';
            leaving.concat(state.history || []).forEach(function(e, i) {
                const div = document.createElement('div');
                div.className = 'entry ' + e.move.actor + (i < leaving.length ? ' leaving' : '');
                div.textContent = entryText(e);
                feed.appendChild(div);
            });

            document.getElementById('alert').textContent = state.alert || '';

            const modal = document.getElementById('end-modal');
            if (state.modal) {
                document.getElementById('dialog-message-headline').textContent = state.modal.headline;
                document.getElementById('dialog-message-details').style.display = state.modal.showDetails ? '' : 'none';
                modal.style.display = 'block';
                modal.focus();
            } else {
                modal.style.display = 'none';
            }
        }

        document.querySelectorAll('#play-buttons button').forEach(function(btn) {
            btn.onclick = function() { send('play', { number: parseInt(btn.dataset.amount) }); };
        });

        document.addEventListener('keydown', function(e) {
            if ('123'.indexOf(e.key) >= 0) {
                const btn = document.querySelector('#play-buttons button[data-amount="' + e.key + '"]');
                if (!btn.disabled) btn.click();
            }
        });

        document.getElementById('end-modal').addEventListener('keydown', function(e) {
            if (e.key === 'Enter') document.querySelector('#end-modal .btn-primary').click();
        });
        document.querySelector('#end-modal .btn-primary').onclick = function() { send('confirm'); };
    </script>
</body>
</html>
`

// ServeHTML serves the live view page.
func ServeHTML(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	count, err := w.Write([]byte(page))
	if err != nil {
		slog.Error("failed to write page", slog.Any("error", err))
		return
	}
	slog.Debug("served live view page", slog.Int("bytes", count))
}
