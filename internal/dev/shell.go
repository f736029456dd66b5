package dev

import (
	"bytes"
	"fmt"
	"html"
)

// defaultShell renders the built-in app shell used when the project
// has no public/index.html. It lists the scanned routes so a fresh
// project shows something useful at any path.
func defaultShell(projectName string) []byte {
	name := html.EscapeString(projectName)
	if name == "" {
		name = "zenith"
	}
	return []byte(fmt.Sprintf(defaultShellHTML, name, name))
}

// injectDevClient splices the live-reload client into an HTML
// document, preferring a spot just before </body>.
func injectDevClient(body []byte) []byte {
	script := []byte(DevClientScript)
	if idx := bytes.LastIndex(body, []byte("</body>")); idx != -1 {
		return splice(body, script, idx)
	}
	if idx := bytes.LastIndex(body, []byte("</html>")); idx != -1 {
		return splice(body, script, idx)
	}
	return splice(body, script, len(body))
}

func splice(body, insert []byte, at int) []byte {
	out := make([]byte, 0, len(body)+len(insert))
	out = append(out, body[:at]...)
	out = append(out, insert...)
	out = append(out, body[at:]...)
	return out
}

const defaultShellHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>%s</title>
<style>
body { font-family: system-ui, sans-serif; margin: 0; padding: 40px; background: #101014; color: #e8e8ec; }
h1 { font-size: 20px; margin: 0 0 4px; }
p.sub { color: #8a8a94; margin: 0 0 24px; }
table { border-collapse: collapse; width: 100%%; max-width: 720px; }
th, td { text-align: left; padding: 8px 12px; border-bottom: 1px solid #26262e; font-size: 14px; }
th { color: #8a8a94; font-weight: 500; }
td.path { font-family: ui-monospace, monospace; }
td.file { color: #8a8a94; }
</style>
</head>
<body>
<h1>%s</h1>
<p class="sub">No public/index.html yet. This is the built-in shell; the scanned routes are listed below.</p>
<div id="app"><table id="routes"><tr><th>Route</th><th>Score</th><th>Page file</th></tr></table></div>
<script>
fetch('/_zenith/manifest.json').then(function(res) {
    if (!res.ok) { return null; }
    return res.json();
}).then(function(manifest) {
    if (!manifest || !manifest.routes) { return; }
    var table = document.getElementById('routes');
    manifest.routes.forEach(function(route) {
        var tr = document.createElement('tr');
        var path = document.createElement('td');
        path.className = 'path';
        path.textContent = route.path;
        var score = document.createElement('td');
        score.textContent = route.score;
        var file = document.createElement('td');
        file.className = 'file';
        file.textContent = route.filePath || '';
        tr.appendChild(path);
        tr.appendChild(score);
        tr.appendChild(file);
        table.appendChild(tr);
    });
}).catch(function() {});
</script>
</body>
</html>
`

// DevClientScript is the live-reload client injected into served HTML.
// It connects to /_zenith/reload, applies reload and css messages,
// refetches the manifest on manifest messages, and renders build
// errors as a full-screen overlay.
const DevClientScript = `
<script>
(function() {
    'use strict';

    var reconnectDelay = 1000;
    var maxReconnectDelay = 30000;
    var ws = null;

    function connect() {
        var protocol = location.protocol === 'https:' ? 'wss:' : 'ws:';
        ws = new WebSocket(protocol + '//' + location.host + '/_zenith/reload');

        ws.onopen = function() {
            console.log('[Zenith] Live reload connected');
            reconnectDelay = 1000;
            syncErrorState();
        };

        ws.onmessage = function(e) {
            var msg;
            try {
                msg = JSON.parse(e.data);
            } catch (err) {
                return;
            }

            switch (msg.type) {
                case 'reload':
                    console.log('[Zenith] Reloading...');
                    location.reload();
                    break;

                case 'css':
                    console.log('[Zenith] Refreshing CSS...');
                    refreshCSS();
                    break;

                case 'manifest':
                    console.log('[Zenith] Route manifest changed');
                    if (window.__zenith && typeof window.__zenith.reloadManifest === 'function') {
                        window.__zenith.reloadManifest();
                    } else {
                        location.reload();
                    }
                    break;

                case 'error':
                    console.error('[Zenith] Build error:', msg.error);
                    showErrorOverlay(msg.error);
                    break;

                case 'clear':
                    clearErrorOverlay();
                    break;
            }
        };

        ws.onclose = function() {
            console.log('[Zenith] Connection lost, reconnecting in', reconnectDelay + 'ms');
            setTimeout(function() {
                reconnectDelay = Math.min(reconnectDelay * 2, maxReconnectDelay);
                connect();
            }, reconnectDelay);
        };

        ws.onerror = function() {
            ws.close();
        };
    }

    function syncErrorState() {
        fetch('/_zenith/error').then(function(res) {
            if (res.status === 200) {
                return res.json().then(function(err) {
                    showErrorOverlay(formatError(err));
                });
            }
            clearErrorOverlay();
        }).catch(function() {});
    }

    function formatError(err) {
        var text = (err.code ? err.code + ': ' : '') + (err.message || 'unknown error');
        if (err.detail) { text += '\n\n' + err.detail; }
        if (err.suggestion) { text += '\n\n' + err.suggestion; }
        return text;
    }

    function refreshCSS() {
        var links = document.querySelectorAll('link[rel="stylesheet"]');
        links.forEach(function(link) {
            var url = new URL(link.href);
            url.searchParams.set('_reload', Date.now());
            link.href = url.toString();
        });
    }

    function showErrorOverlay(error) {
        clearErrorOverlay();

        var overlay = document.createElement('div');
        overlay.id = 'zenith-error-overlay';
        overlay.style.cssText = 'position:fixed;top:0;left:0;right:0;bottom:0;background:rgba(0,0,0,0.9);color:#fff;font-family:monospace;font-size:14px;padding:20px;overflow:auto;z-index:999999;';

        var content = document.createElement('div');
        content.style.cssText = 'max-width:800px;margin:0 auto;';

        var title = document.createElement('h2');
        title.style.cssText = 'color:#ff5555;margin:0 0 20px;';
        title.textContent = 'Route Error';

        var pre = document.createElement('pre');
        pre.style.cssText = 'white-space:pre-wrap;word-wrap:break-word;background:#1a1a1a;padding:20px;border-radius:8px;border:1px solid #333;';
        pre.textContent = error;

        var hint = document.createElement('p');
        hint.style.cssText = 'margin-top:20px;color:#888;';
        hint.textContent = 'Fix the error and save to reload.';

        content.appendChild(title);
        content.appendChild(pre);
        content.appendChild(hint);
        overlay.appendChild(content);
        document.body.appendChild(overlay);
    }

    function clearErrorOverlay() {
        var overlay = document.getElementById('zenith-error-overlay');
        if (overlay) {
            overlay.remove();
        }
    }

    if (document.readyState === 'loading') {
        document.addEventListener('DOMContentLoaded', connect);
    } else {
        connect();
    }
})();
</script>
`
