package authbridge

import (
	"encoding/json"
	"fmt"

	"github.com/use-agent/forage/models"
)

// LoginSite describes one host the bridge knows how to authenticate
// against: where its login form lives and the script that drives it.
type LoginSite struct {
	// Host is the normalized host ("quitoque.fr").
	Host string

	// LoginURL is the page carrying the login form. The credential script
	// is injected only when the session reports this URL as loaded.
	LoginURL string

	// Script builds the page script that fills the form, submits it, and
	// posts the authenticated markup of targetURL back through the
	// session's message channel.
	Script func(username, password, targetURL string) string
}

// loginSites is the static allow-list. Adding a host means writing and
// validating its login script against the live site.
var loginSites = []LoginSite{
	{
		Host:     "quitoque.fr",
		LoginURL: "https://www.quitoque.fr/connexion",
		Script:   formLoginScript("input[name='_username']", "input[name='_password']"),
	},
}

// siteFor resolves the login site for a URL or bare host.
func siteFor(urlOrHost string) (LoginSite, bool) {
	host := models.NormalizeHost(urlOrHost)
	for _, site := range loginSites {
		if site.Host == host {
			return site, true
		}
	}
	return LoginSite{}, false
}

// formLoginScript builds a Script for the common form-post login shape:
// fill the two fields, submit the form via fetch so the session keeps its
// cookies, then fetch the target page and post its markup back. Any
// failure is posted as an authError message rather than thrown, so the
// bridge always hears an answer.
func formLoginScript(userSelector, passSelector string) func(username, password, targetURL string) string {
	return func(username, password, targetURL string) string {
		// json.Marshal produces valid JS string literals, so credentials
		// containing quotes cannot break out of the script.
		u, _ := json.Marshal(username)
		p, _ := json.Marshal(password)
		t, _ := json.Marshal(targetURL)

		return fmt.Sprintf(`(async () => {
	const post = (msg) => window.__foragePost && window.__foragePost(msg);
	try {
		const userField = document.querySelector(%q);
		const passField = document.querySelector(%q);
		const form = userField && userField.closest('form');
		if (!userField || !passField || !form) {
			post({type: 'authError', message: 'login form not found'});
			return;
		}
		userField.value = %s;
		passField.value = %s;

		const resp = await fetch(form.action || window.location.href, {
			method: (form.method || 'POST').toUpperCase(),
			body: new FormData(form),
			credentials: 'include',
			redirect: 'follow',
		});
		if (!resp.ok || resp.url.includes('connexion') || resp.url.includes('login')) {
			post({type: 'authError', message: 'invalid credentials'});
			return;
		}

		const page = await fetch(%s, {credentials: 'include'});
		if (!page.ok) {
			post({type: 'authError', message: 'failed to load target page: ' + page.status});
			return;
		}
		post({type: 'authResult', html: await page.text()});
	} catch (e) {
		post({type: 'authError', message: String(e)});
	}
})()`, userSelector, passSelector, u, p, t)
	}
}
