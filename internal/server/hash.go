package server

import (
	"encoding/base64"
	"net/http"

	"github.com/MrEthical07/goHash/internal/server/handler"
)

// passwordFields carries the password either as a JSON string or, for
// arbitrary bytes, as standard base64. Exactly one must be present.
type passwordFields struct {
	Password       *string `json:"password"`
	PasswordBase64 *string `json:"password_base64"`
}

func (f passwordFields) bytes() ([]byte, error) {
	switch {
	case f.Password != nil && f.PasswordBase64 != nil:
		return nil, handler.ClientErr(http.StatusBadRequest, "password and password_base64 are mutually exclusive")
	case f.Password != nil:
		return []byte(*f.Password), nil
	case f.PasswordBase64 != nil:
		pw, err := base64.StdEncoding.Strict().DecodeString(*f.PasswordBase64)
		if err != nil {
			return nil, handler.ClientErr(http.StatusBadRequest, "password_base64 must be standard base64")
		}
		return pw, nil
	default:
		return nil, handler.ClientErr(http.StatusBadRequest, "password is required")
	}
}

type hashRequest struct {
	passwordFields
}

type hashResponse struct {
	Hash string `json:"hash"`
}

type verifyRequest struct {
	Hash string `json:"hash" validate:"required,max=512"`
	passwordFields
}

type verifyResponse struct {
	Match        bool  `json:"match"`
	NeedsUpgrade *bool `json:"needs_upgrade,omitempty"`
}

type needsUpgradeRequest struct {
	Hash string `json:"hash" validate:"required,max=512"`
}

type needsUpgradeResponse struct {
	NeedsUpgrade bool `json:"needs_upgrade"`
}

func (s *Server) hash(r *http.Request) (*handler.Response, error) {
	req, err := handler.DecodeBody[hashRequest](r)
	if err != nil {
		return nil, err
	}
	pw, err := req.bytes()
	if err != nil {
		return nil, err
	}
	defer clear(pw)

	encoded, err := s.engine.Hash(r.Context(), pw)
	if err != nil {
		return nil, s.mapError(r, err)
	}
	return handler.OK(hashResponse{Hash: encoded}), nil
}

// verify also reports needs_upgrade on a match, so clients can rehash while they
// still hold the plaintext.
func (s *Server) verify(r *http.Request) (*handler.Response, error) {
	req, err := handler.DecodeBody[verifyRequest](r)
	if err != nil {
		return nil, err
	}
	pw, err := req.bytes()
	if err != nil {
		return nil, err
	}
	defer clear(pw)

	match, err := s.engine.Verify(r.Context(), req.Hash, pw)
	if err != nil {
		return nil, s.mapError(r, err)
	}

	resp := verifyResponse{Match: match}
	if match {
		if upgrade, err := s.engine.NeedsUpgrade(req.Hash); err == nil {
			resp.NeedsUpgrade = &upgrade
		}
	}
	return handler.OK(resp), nil
}

func (s *Server) needsUpgrade(r *http.Request) (*handler.Response, error) {
	req, err := handler.DecodeBody[needsUpgradeRequest](r)
	if err != nil {
		return nil, err
	}

	upgrade, err := s.engine.NeedsUpgrade(req.Hash)
	if err != nil {
		return nil, s.mapError(r, err)
	}
	return handler.OK(needsUpgradeResponse{NeedsUpgrade: upgrade}), nil
}
