// SPDX-License-Identifier: MIT

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/kryptoslab/kryptos/internal/analysis"
	"github.com/kryptoslab/kryptos/internal/api/middleware"
	"github.com/kryptoslab/kryptos/internal/cipher"
	"github.com/kryptoslab/kryptos/internal/crack"
	"github.com/kryptoslab/kryptos/internal/jobs"
	"github.com/kryptoslab/kryptos/internal/telemetry"
)

// decodeJSON reads a strict JSON body into v, bounded so a hostile client
// cannot stream an arbitrarily large payload into memory.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	limit := int64(s.cfg.MaxTextLength)*4 + 64*1024
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// checkTextLength enforces the configured ceiling on input texts.
func (s *Server) checkTextLength(text string) error {
	if len(text) > s.cfg.MaxTextLength {
		return fmt.Errorf("text exceeds maximum length of %d bytes", s.cfg.MaxTextLength)
	}
	return nil
}

type cipherRequest struct {
	Cipher cipher.Spec `json:"cipher"`
	Text   string      `json:"text"`
}

type cipherResponse struct {
	Cipher string `json:"cipher"`
	Result string `json:"result"`
}

func (s *Server) handleEncrypt(w http.ResponseWriter, r *http.Request) {
	s.handleCipherOp(w, r, false)
}

func (s *Server) handleDecrypt(w http.ResponseWriter, r *http.Request) {
	s.handleCipherOp(w, r, true)
}

func (s *Server) handleCipherOp(w http.ResponseWriter, r *http.Request, decrypt bool) {
	var req cipherRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if req.Text == "" {
		writeBadRequest(w, "text is required")
		return
	}
	if err := s.checkTextLength(req.Text); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, err.Error())
		return
	}

	c, err := cipher.New(req.Cipher)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	middleware.AddSpanAttributes(r, telemetry.CipherAttributes(req.Cipher.Name, len(req.Cipher.Key))...)

	var result string
	if decrypt {
		result, err = c.Decrypt(req.Text)
	} else {
		result, err = c.Encrypt(req.Text)
	}
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, cipherResponse{Cipher: req.Cipher.Name, Result: result})
}

type analyzeRequest struct {
	Text         string `json:"text"`
	MaxKeyLength int    `json:"max_key_length,omitempty"`
}

type analyzeResponse struct {
	Identification analysis.Identification       `json:"identification"`
	Frequencies    map[string]float64            `json:"frequencies"`
	KeyLengths     []analysis.KeyLengthCandidate `json:"key_lengths,omitempty"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if req.Text == "" {
		writeBadRequest(w, "text is required")
		return
	}
	if err := s.checkTextLength(req.Text); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, err.Error())
		return
	}

	maxKeyLength := req.MaxKeyLength
	if maxKeyLength <= 0 {
		maxKeyLength = crack.DefaultMaxKeyLength
	}

	id := analysis.Identify(req.Text)

	freqs := make(map[string]float64, 26)
	for letter, freq := range analysis.Frequencies(req.Text) {
		freqs[string(letter)] = freq
	}

	resp := analyzeResponse{
		Identification: id,
		Frequencies:    freqs,
	}
	if id.Class == analysis.ClassPolyalphabetic {
		resp.KeyLengths = analysis.EstimateKeyLengths(req.Text, maxKeyLength)
	}

	writeJSON(w, http.StatusOK, resp)
}

type ciphersResponse struct {
	Ciphers  []string `json:"ciphers"`
	Breakers []string `json:"breakers"`
}

func (s *Server) handleCiphers(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, ciphersResponse{
		Ciphers:  cipher.Names(),
		Breakers: jobs.Ciphers(),
	})
}

// statusForCrackError maps breaker failures to HTTP status codes.
func statusForCrackError(err error) int {
	switch {
	case errors.Is(err, crack.ErrTextTooShort),
		errors.Is(err, crack.ErrUnsupportedClass):
		return http.StatusUnprocessableEntity
	case errors.Is(err, jobs.ErrUnknownCipher):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
