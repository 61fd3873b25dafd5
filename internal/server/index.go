// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package server

import "strings"

// renderIndexPage fills the configured endpoint paths into the browser page.
func renderIndexPage(enqueuePath, statusPath string) string {
	return strings.NewReplacer(
		"{{enqueue}}", enqueuePath,
		"{{status}}", statusPath,
	).Replace(indexPage)
}

const indexPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>DSL Queue Server</title>
  <style>
    body { font-family: sans-serif; margin: 2rem auto; max-width: 720px; }
    textarea { width: 100%; min-height: 320px; font-family: monospace; }
    .status { margin-top: 1rem; }
    button { padding: 0.6rem 1.2rem; font-size: 1rem; cursor: pointer; }
  </style>
</head>
<body>
  <h1>Interactive DSL Queue</h1>
  <p>Paste a DSL payload (YAML or JSON) and click <strong>Submit</strong> to enqueue it.</p>
  <form id="enqueue-form" method="post" action="{{enqueue}}">
    <textarea name="payload" placeholder="# YAML or JSON test definition"></textarea>
    <div class="status">
      <button type="submit">Submit</button>
      <span id="queue-size"></span>
    </div>
  </form>
  <script>
    const form = document.getElementById('enqueue-form');
    const queueLabel = document.getElementById('queue-size');

    async function refreshStatus() {
      try {
        const response = await fetch('{{status}}');
        if (!response.ok) return;
        const data = await response.json();
        queueLabel.textContent = ` + "`Queued: ${data.size}`" + `;
      } catch (err) {
        console.error('Failed to fetch status', err);
      }
    }

    form.addEventListener('submit', async (event) => {
      event.preventDefault();
      const formData = new FormData(form);
      const payload = formData.get('payload');
      if (!payload || !payload.trim()) {
        alert('Please provide a DSL payload before submitting.');
        return;
      }

      try {
        const response = await fetch('{{enqueue}}', {
          method: 'POST',
          headers: { 'Content-Type': 'text/plain; charset=utf-8' },
          body: payload,
        });
        if (response.ok) {
          form.reset();
          await refreshStatus();
        } else {
          alert('Failed to enqueue payload.');
        }
      } catch (err) {
        alert('Request failed: ' + err);
      }
    });

    setInterval(refreshStatus, 1500);
    refreshStatus();
  </script>
</body>
</html>
`
