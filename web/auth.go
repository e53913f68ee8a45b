package web

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"code.superseriousbusiness.org/httpsig"
	"github.com/mimusdev/mimus/domain"
	"github.com/mimusdev/mimus/util"
	"golang.org/x/crypto/bcrypt"
)

const sessionTTL = 15 * time.Minute

// Authenticator validates a username/password pair against an external
// system. Deployments that delegate password checks install one at
// startup; when set it runs after the local hash comparison fails.
type Authenticator func(username, password string) bool

var ExternalAuthenticator Authenticator

// session caches a verified Authorization header so repeated calls skip
// the bcrypt or signature work. A session created through a non-API login
// is marked loggedIn but not apiAllowed; the API gate refuses those
// instead of silently honoring cookies a browser would replay.
type session struct {
	credential *domain.Credential
	apiAllowed bool
	expires    time.Time
}

var sessions sync.Map

// RegisterSession seeds the session cache for an already-verified header.
// The admin console uses it after its own login flow.
func RegisterSession(header string, cred *domain.Credential, apiAllowed bool) {
	sessions.Store(util.PkToHash(header), &session{
		credential: cred,
		apiAllowed: apiAllowed,
		expires:    time.Now().Add(sessionTTL),
	})
}

// Authenticate resolves the acting identity for the request, or returns
// the fault to emit. Two schemes are accepted: HTTP signatures bound to
// the credential's public key, and basic auth against the password hash.
func Authenticate(c *apiContext) error {
	header := c.gin.GetHeader("Authorization")
	if header == "" {
		return Unauthorized("This method requires authentication.")
	}

	key := util.PkToHash(header)
	if v, ok := sessions.Load(key); ok {
		s := v.(*session)
		if time.Now().Before(s.expires) {
			if !s.apiAllowed {
				return Forbidden("this session may not call the API")
			}
			return c.attach(s.credential)
		}
		sessions.Delete(key)
	}

	var err error
	var cred *domain.Credential
	if strings.HasPrefix(strings.ToLower(header), "signature ") {
		err, cred = verifySignature(c)
	} else {
		err, cred = verifyBasic(c)
	}
	if err != nil {
		return err
	}

	sessions.Store(key, &session{
		credential: cred,
		apiAllowed: true,
		expires:    time.Now().Add(sessionTTL),
	})
	log.Printf("%s logged in via api", cred.Username)

	return c.attach(cred)
}

// attach loads the actor behind the credential and binds both to the
// request context.
func (c *apiContext) attach(cred *domain.Credential) error {
	err, actor := c.env.Store.ReadActorById(cred.ActorId)
	if err != nil || actor == nil {
		return InternalError(fmt.Sprintf("no actor behind credential %s", cred.Username))
	}
	c.credential = cred
	c.actor = actor
	return nil
}

func verifyBasic(c *apiContext) (error, *domain.Credential) {
	username, password, ok := c.gin.Request.BasicAuth()
	if !ok {
		return Unauthorized("Could not authenticate you."), nil
	}

	// Clients configured against a federated handle send user@domain.
	if i := strings.IndexByte(username, '@'); i >= 0 {
		username = username[:i]
	}

	err, cred := c.env.Store.ReadCredentialByUsername(username)
	if err != nil || cred == nil {
		return Unauthorized("Could not authenticate you."), nil
	}

	if bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)) != nil {
		if ExternalAuthenticator == nil || !ExternalAuthenticator(username, password) {
			return Unauthorized("Could not authenticate you."), nil
		}
	}

	return nil, cred
}

func verifySignature(c *apiContext) (error, *domain.Credential) {
	verifier, err := httpsig.NewVerifier(c.gin.Request)
	if err != nil {
		return Unauthorized("malformed signature header"), nil
	}

	username := usernameFromKeyId(verifier.KeyId())
	if username == "" {
		return Unauthorized("signature names no key"), nil
	}

	err, cred := c.env.Store.ReadCredentialByUsername(username)
	if err != nil || cred == nil {
		return Unauthorized("Could not authenticate you."), nil
	}

	pubKey, err := parseRsaPublicKey(cred.PublicKeyPem)
	if err != nil {
		log.Printf("credential %s carries an unusable public key: %v", username, err)
		return Unauthorized("Could not authenticate you."), nil
	}

	if err := verifier.Verify(pubKey, httpsig.RSA_SHA256); err != nil {
		return Unauthorized("signature verification failed"), nil
	}

	return nil, cred
}

// usernameFromKeyId reduces a key id to the credential username. Accepts
// both a plain username and an actor key URL of the form
// "https://example.com/users/alice#main-key".
func usernameFromKeyId(keyId string) string {
	id := strings.Split(keyId, "#")[0]
	id = strings.TrimSuffix(id, "/")
	if i := strings.LastIndexByte(id, '/'); i >= 0 {
		id = id[i+1:]
	}
	return id
}

// parseRsaPublicKey accepts both PKIX and PKCS1 encoded keys, since
// locally generated pairs use PKCS1 while imported ones tend to be PKIX.
func parseRsaPublicKey(pemString string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(pemString))
	if block == nil {
		return nil, fmt.Errorf("no PEM block found")
	}

	if pubKey, err := x509.ParsePKIXPublicKey(block.Bytes); err == nil {
		if rsaKey, ok := pubKey.(*rsa.PublicKey); ok {
			return rsaKey, nil
		}
		return nil, fmt.Errorf("not an RSA public key")
	}

	return x509.ParsePKCS1PublicKey(block.Bytes)
}
