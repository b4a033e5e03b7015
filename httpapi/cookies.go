package httpapi

import "net/http"

func (a *API) setSessionCookie(w http.ResponseWriter, token string) {
	c := &http.Cookie{
		Name:     a.cfg.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
	}
	if a.cfg.SecureCookies {
		c.Secure = true
		c.SameSite = http.SameSiteLaxMode
	}
	http.SetCookie(w, c)
}

func (a *API) clearSessionCookie(w http.ResponseWriter) {
	c := &http.Cookie{
		Name:     a.cfg.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	}
	if a.cfg.SecureCookies {
		c.Secure = true
		c.SameSite = http.SameSiteLaxMode
	}
	http.SetCookie(w, c)
}

func (a *API) sessionTokenFromRequest(r *http.Request) string {
	c, err := r.Cookie(a.cfg.CookieName)
	if err != nil {
		return ""
	}
	return c.Value
}
