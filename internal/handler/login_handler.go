package handler

import (
	"fmt"
	"net/http"
)

// LoginPage serves the static sign-in form. It lives on the public allow-list
// so the documentation links have somewhere to send an unauthenticated user.
func LoginPage(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>Sign in</title>
    <style>
      body{font-family:sans-serif;background:#fafafa;display:flex;justify-content:center;padding-top:10vh;}
      form{background:#fff;border:1px solid #ddd;border-radius:6px;padding:2rem;width:320px;}
      label{display:block;margin:0.75rem 0 0.25rem;}
      input{width:100%;padding:0.5rem;box-sizing:border-box;}
      button{margin-top:1rem;width:100%;padding:0.6rem;}
      #status{margin-top:1rem;font-size:0.9rem;word-break:break-all;}
    </style>
  </head>
  <body>
    <form id="login-form">
      <h2>Sign in</h2>
      <label for="email">Email</label>
      <input id="email" type="email" autocomplete="username" required />
      <label for="password">Password</label>
      <input id="password" type="password" autocomplete="current-password" required />
      <button type="submit">Sign in</button>
      <div id="status"></div>
    </form>
    <script>
      document.getElementById('login-form').addEventListener('submit', async function (ev) {
        ev.preventDefault();
        var status = document.getElementById('status');
        var res = await fetch('/api/auth/login', {
          method: 'POST',
          headers: { 'Content-Type': 'application/json' },
          body: JSON.stringify({
            email: document.getElementById('email').value,
            password: document.getElementById('password').value
          })
        });
        var body = await res.json();
        if (!res.ok) {
          status.textContent = body.message || 'Login failed';
          return;
        }
        var role = body.user.role;
        var domain = role.indexOf('dube') === 0 ? 'dube' : 'wfp';
        var level = role.indexOf('admin') >= 0 ? 'admin' : 'viewer';
        window.location = '/api-docs/' + domain + '/' + level +
          '?token=' + encodeURIComponent(body.tokens.accessToken);
      });
    </script>
  </body>
</html>`)
}
