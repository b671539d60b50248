package web

import (
	"net/http"
	"strings"

	"minecraft-codegen/internal/theme"
)

// handleStatic обрабатывает статические файлы
func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/static/")

	switch path {
	case "style.css":
		w.Header().Set("Content-Type", "text/css; charset=utf-8")
		_, _ = w.Write([]byte(getCSS() + theme.FromValues(r.URL.Query()).CSS()))
	case "app.js":
		w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
		_, _ = w.Write([]byte(getJS()))
	default:
		http.NotFound(w, r)
	}
}

// getCSS возвращает базовые стили; цвета темы добавляются следом
func getCSS() string {
	return `* { box-sizing: border-box; }
body {
    margin: 0;
    font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
    line-height: 1.5;
}
.layout { display: flex; min-height: 100vh; }
.sidebar {
    width: 300px;
    flex-shrink: 0;
    padding: 24px 16px;
    background: rgba(128, 128, 128, 0.08);
}
.sidebar h2 { font-size: 1.1em; margin-top: 0; }
.settings label { display: block; margin-bottom: 14px; font-size: 0.9em; }
.settings select, .settings input[type=range] { display: block; width: 100%; margin-top: 4px; }
.settings input[type=color] { display: block; margin-top: 4px; width: 48px; height: 28px; padding: 0; border: none; }
.content { flex: 1; padding: 24px 48px; max-width: 1100px; }
.subtitle { font-weight: normal; opacity: 0.8; }
.prompt label { display: block; margin-bottom: 6px; }
.prompt textarea {
    width: 100%;
    padding: 10px;
    border-radius: 8px;
    border: 1px solid rgba(128, 128, 128, 0.4);
    resize: vertical;
}
.prompt button {
    margin-top: 10px;
    padding: 8px 18px;
    border: none;
    border-radius: 8px;
    cursor: pointer;
}
.prompt button:disabled { opacity: 0.6; cursor: wait; }
.status { margin: 12px 0; font-style: italic; }
.alert { margin: 12px 0; padding: 10px 14px; border-radius: 8px; }
.alert-warning { background: #fff3cd; color: #664d03; }
.alert-error { background: #f8d7da; color: #58151c; }
#output { margin: 16px 0; }
.chat-box pre { overflow-x: auto; padding: 8px; background: rgba(0, 0, 0, 0.06); border-radius: 6px; }
.chat-box p:first-child { margin-top: 0; }
.chat-box p:last-child { margin-bottom: 0; }
@media (max-width: 800px) {
    .layout { flex-direction: column; }
    .sidebar { width: auto; }
    .content { padding: 16px; }
}
`
}

// getJS возвращает клиентский скрипт: читает поток /api/generate и
// перерисовывает вывод целиком на каждое событие render
func getJS() string {
	return `(function () {
    var slider = document.querySelector('input[name="font_size"]');
    var sliderValue = document.getElementById('font-size-value');
    if (slider && sliderValue) {
        slider.addEventListener('input', function () { sliderValue.textContent = slider.value; });
    }

    var form = document.getElementById('prompt-form');
    if (!form || !window.fetch || !window.TextDecoder || !window.ReadableStream) {
        return;
    }
    var output = document.getElementById('output');
    var alertBox = document.getElementById('alert');
    var status = document.getElementById('status');
    var historyBox = document.getElementById('history');
    var button = form.querySelector('button');

    function showAlert(kind, message) {
        alertBox.innerHTML = '';
        if (!message) {
            return;
        }
        var div = document.createElement('div');
        div.className = 'alert alert-' + kind;
        div.textContent = message;
        alertBox.appendChild(div);
    }

    function handleEvent(name, payload) {
        switch (name) {
        case 'render':
            output.innerHTML = payload.html;
            break;
        case 'warning':
            showAlert('warning', payload.message);
            break;
        case 'error':
            showAlert('error', payload.message);
            if (payload.partial_html) {
                output.innerHTML = payload.partial_html;
            }
            break;
        case 'done':
            if (payload.entry_html) {
                historyBox.insertAdjacentHTML('afterbegin', payload.entry_html);
                var limit = parseInt(historyBox.dataset.limit, 10) || 20;
                while (historyBox.children.length > limit) {
                    historyBox.removeChild(historyBox.lastElementChild);
                }
            }
            break;
        }
    }

    function parseBlock(block) {
        var name = 'message';
        var data = [];
        block.split('\n').forEach(function (line) {
            if (line.indexOf('event:') === 0) {
                name = line.slice(6).trim();
            } else if (line.indexOf('data:') === 0) {
                data.push(line.slice(5).trim());
            }
        });
        if (data.length === 0) {
            return;
        }
        try {
            handleEvent(name, JSON.parse(data.join('\n')));
        } catch (e) {
            console.error('Bad event', e);
        }
    }

    form.addEventListener('submit', function (e) {
        e.preventDefault();
        showAlert('', '');
        output.innerHTML = '';
        status.hidden = false;
        button.disabled = true;

        var body = new URLSearchParams();
        body.set('prompt', form.elements.prompt.value);

        fetch('/api/generate', { method: 'POST', body: body }).then(function (resp) {
            if (!resp.ok || !resp.body) {
                throw new Error('HTTP ' + resp.status);
            }
            var reader = resp.body.getReader();
            var decoder = new TextDecoder();
            var buffer = '';
            function pump() {
                return reader.read().then(function (chunk) {
                    if (chunk.done) {
                        if (buffer.trim()) {
                            parseBlock(buffer);
                        }
                        return;
                    }
                    buffer += decoder.decode(chunk.value, { stream: true });
                    var idx;
                    while ((idx = buffer.indexOf('\n\n')) >= 0) {
                        parseBlock(buffer.slice(0, idx));
                        buffer = buffer.slice(idx + 2);
                    }
                    return pump();
                });
            }
            return pump();
        }).catch(function (err) {
            showAlert('error', 'Генерация не удалась: ' + err.message);
        }).then(function () {
            status.hidden = true;
            button.disabled = false;
        });
    });
})();
`
}
