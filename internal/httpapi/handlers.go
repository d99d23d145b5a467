package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/pankaj-dahiya-devops/cloud-dome/internal/engine"
	"github.com/pankaj-dahiya-devops/cloud-dome/internal/llm"
	"github.com/pankaj-dahiya-devops/cloud-dome/internal/models"
	"github.com/pankaj-dahiya-devops/cloud-dome/internal/providers/aws/common"
)

// credentialsRequest is the body of the account and scan endpoints. Either
// the plain fields or EncryptedData, the RSA-OAEP ciphertext of the same
// JSON with the plain fields only, are set.
type credentialsRequest struct {
	AccountID     string `json:"awsAccountId"`
	AccessKey     string `json:"awsAccessKey"`
	SecretKey     string `json:"awsSecretKey"`
	SessionToken  string `json:"awsSessionToken,omitempty"`
	EncryptedData string `json:"encryptedData,omitempty"`
}

func (c credentialsRequest) credentials() models.Credentials {
	return models.Credentials{
		AccessKeyID:     c.AccessKey,
		SecretAccessKey: c.SecretKey,
		SessionToken:    c.SessionToken,
	}
}

// decodeCredentials reads and, when needed, decrypts the request body. It
// checks the required fields before anything touches AWS.
func (r *Router) decodeCredentials(req *http.Request) (credentialsRequest, error) {
	var body credentialsRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return body, fmt.Errorf("%w: invalid JSON body", errBadRequest)
	}

	if body.EncryptedData != "" {
		plain, err := r.deps.Keys.Decrypt(body.EncryptedData)
		if err != nil {
			return body, fmt.Errorf("%w: %w", errBadRequest, err)
		}
		body = credentialsRequest{}
		if err := json.Unmarshal(plain, &body); err != nil {
			return body, fmt.Errorf("%w: invalid encrypted JSON", errBadRequest)
		}
	}

	body.AccountID = strings.TrimSpace(body.AccountID)
	body.AccessKey = strings.TrimSpace(body.AccessKey)
	if body.AccountID == "" || body.AccessKey == "" || body.SecretKey == "" {
		return body, errMissingFields
	}
	return body, nil
}

// POST /api/check-aws-info
// Body: {"awsAccountId", "awsAccessKey", "awsSecretKey", "awsSessionToken"?} or {"encryptedData"}
func (r *Router) handleCheckAccount(w http.ResponseWriter, req *http.Request) error {
	body, err := r.decodeCredentials(req)
	if err != nil {
		return err
	}

	profile, err := r.deps.Provider.LoadStatic(req.Context(), body.credentials())
	if errors.Is(err, common.ErrInvalidCredentials) {
		r.logger.Info("credentials rejected", zap.Error(err))
		render.Status(req, http.StatusUnauthorized)
		render.JSON(w, req, map[string]bool{"exists": false})
		return nil
	}
	if err != nil {
		return err
	}

	render.JSON(w, req, map[string]bool{
		"exists": common.SameAccount(profile.AccountID, body.AccountID),
	})
	return nil
}

// POST /api/run-security-checks
// Same body as /api/check-aws-info. Responds once the scan is stored.
func (r *Router) handleRunChecks(w http.ResponseWriter, req *http.Request) error {
	body, err := r.decodeCredentials(req)
	if err != nil {
		return err
	}

	creds := body.credentials()
	result, err := r.deps.Engine.RunScan(req.Context(), engine.ScanOptions{
		Credentials: &creds,
		Regions:     r.deps.Regions,
		Summarize:   r.deps.Summarize,
	})
	if err != nil {
		return err
	}

	render.JSON(w, req, map[string]string{"scanId": result.ScanID})
	return nil
}

// GET /api/get-security-results/{scanId}
func (r *Router) handleGetResults(w http.ResponseWriter, req *http.Request) error {
	result, err := r.deps.Results.Get(chi.URLParam(req, "scanId"))
	if err != nil {
		return err
	}
	render.JSON(w, req, result)
	return nil
}

// GET /api/get-public-key
func (r *Router) handlePublicKey(w http.ResponseWriter, req *http.Request) error {
	render.JSON(w, req, map[string]string{"publicKey": r.deps.Keys.PublicKeyPEM()})
	return nil
}

// POST /api/generate-fix-code
// Body: {"prompt": "..."}
func (r *Router) handleFixCode(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Prompt string `json:"prompt"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return fmt.Errorf("%w: invalid JSON body", errBadRequest)
	}
	if strings.TrimSpace(body.Prompt) == "" {
		return fmt.Errorf("%w: prompt is required", errBadRequest)
	}
	if r.deps.Fixer == nil {
		return llm.ErrLLMUnavailable
	}

	code, err := r.deps.Fixer.GenerateFixCode(req.Context(), body.Prompt)
	if err != nil {
		return err
	}
	render.JSON(w, req, map[string]string{"code": code})
	return nil
}
