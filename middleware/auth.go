package middleware

import (
	"log"

	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/mimusdev/mimus/db"
	"github.com/mimusdev/mimus/domain"
	"github.com/mimusdev/mimus/util"
)

// AuthMiddleware binds the ssh session to a credential, provisioning a
// fresh actor and keypair on first contact.
func AuthMiddleware(conf *util.AppConfig) wish.Middleware {
	return func(h ssh.Handler) ssh.Handler {
		return func(s ssh.Session) {
			database := db.GetDB()
			hash := util.PkToHash(util.PublicKeyToString(s.PublicKey()))

			_, cred := database.ReadCredentialBySshKeyHash(hash)
			if cred != nil {
				util.LogPublicKey(s)
				h(s)
				return
			}

			handle := util.RandomString(10)
			actor := &domain.Actor{
				CanonicalUrl:  conf.BaseURL() + "/users/" + handle,
				Handle:        handle,
				NetworkOrigin: domain.NetworkNative,
				IsSelf:        true,
			}

			err, actorId := database.CreateActor(actor)
			if err != nil {
				log.Println("Could not create an actor:", err)
				return
			}

			if err := database.CreateCredential(handle, hash, util.GeneratePemKeypair(), actorId); err != nil {
				log.Println("Could not create a credential:", err)
				return
			}

			util.LogPublicKey(s)
			h(s)
		}
	}
}
