package httpapi

import (
	"bytes"
	"encoding/base64"

	"github.com/orgball2608/insta-archive/internal/domain"
	"github.com/orgball2608/insta-archive/pkg/errors"
	"github.com/valyala/fasthttp"
	"golang.org/x/crypto/bcrypt"
)

const accountKey = "account"

var basicPrefix = []byte("Basic ")

// basicCredentials parses an Authorization: Basic header.
func basicCredentials(ctx *fasthttp.RequestCtx) (username, password string, ok bool) {
	header := ctx.Request.Header.Peek(fasthttp.HeaderAuthorization)
	if !bytes.HasPrefix(header, basicPrefix) {
		return "", "", false
	}

	raw, err := base64.StdEncoding.DecodeString(string(header[len(basicPrefix):]))
	if err != nil {
		return "", "", false
	}

	user, pass, found := bytes.Cut(raw, []byte(":"))
	if !found {
		return "", "", false
	}
	return string(user), string(pass), true
}

func unauthorized(ctx *fasthttp.RequestCtx, detail string) {
	ctx.Response.Header.Set(fasthttp.HeaderWWWAuthenticate, `Basic realm="api"`)
	writeDetail(ctx, fasthttp.StatusUnauthorized, detail)
}

// authenticate resolves the account behind the request credentials.
func (s *Server) authenticate(ctx *fasthttp.RequestCtx) (*domain.AdminAccount, bool) {
	username, password, ok := basicCredentials(ctx)
	if !ok {
		unauthorized(ctx, "Authentication credentials were not provided.")
		return nil, false
	}

	acc, err := s.accounts.GetByUsername(ctx, username)
	if err != nil {
		if !errors.IsNotFound(err) {
			s.writeError(ctx, err)
			return nil, false
		}
		unauthorized(ctx, "Invalid username/password.")
		return nil, false
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)); err != nil {
		unauthorized(ctx, "Invalid username/password.")
		return nil, false
	}

	if err := s.accounts.TouchLogin(ctx, acc.ID); err != nil {
		s.logger.Warn("Failed to record login", "username", acc.Username, "error", err)
	}

	ctx.SetUserValue(accountKey, acc)
	return acc, true
}

// authenticated lets any valid account through.
func (s *Server) authenticated(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		if _, ok := s.authenticate(ctx); !ok {
			return
		}
		next(ctx)
	}
}

// superuser additionally requires the superuser flag.
func (s *Server) superuser(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		acc, ok := s.authenticate(ctx)
		if !ok {
			return
		}
		if !acc.IsSuperuser {
			writeDetail(ctx, fasthttp.StatusForbidden, "You do not have permission to perform this action.")
			return
		}
		next(ctx)
	}
}
