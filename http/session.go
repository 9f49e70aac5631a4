package http

import (
	"errors"

	"github.com/google/uuid"

	"github.com/freekieb7/nano/session"
	"github.com/freekieb7/nano/session/storage"
)

const SessionCookieName = "SID"

// SessionMiddleware loads the session named by the SID cookie into the
// request context, starting a new one when the cookie is missing or
// unknown to store. The session is saved after a successful handler run
// when it is new or was modified.
func SessionMiddleware(store storage.SessionStore) Middleware {
	return func(next Handler) Handler {
		return func(req *Request, res *Response) error {
			var id string
			if c, err := req.Cookie(SessionCookieName); err == nil && store.Has(c.Value) {
				id = c.Value
			}

			fresh := id == ""
			var attributes map[string]any
			if fresh {
				id = uuid.NewString()
			} else {
				var err error
				attributes, err = store.Get(id)
				if err != nil && !errors.Is(err, storage.ErrSessionNotFound) {
					return err
				}
			}

			sess := session.New(id, attributes)
			req.SetContext(session.NewContext(req.Context(), sess))

			if fresh {
				res.SetCookie(&Cookie{
					Name:     SessionCookieName,
					Value:    id,
					Path:     "/",
					HttpOnly: true,
					SameSite: SameSiteLaxMode,
				})
			}

			if err := next(req, res); err != nil {
				return err
			}

			if fresh || sess.Modified() {
				return store.Save(sess)
			}
			return nil
		}
	}
}
