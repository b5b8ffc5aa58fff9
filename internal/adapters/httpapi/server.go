package httpapi

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/newmeca/membership-api/internal/app/billing"
	"github.com/newmeca/membership-api/internal/app/hierarchy"
	"github.com/newmeca/membership-api/internal/domain"
	"github.com/newmeca/membership-api/internal/ports/out/idempotency"
)

// Server is the HTTP adapter over the hierarchy service and the billing engine.
type Server struct {
	Hierarchy *hierarchy.Service
	Billing   *billing.Engine
	Idem      idempotency.Store
}

func NewServer(h *hierarchy.Service, b *billing.Engine, idem idempotency.Store) *Server {
	return &Server{
		Hierarchy: h,
		Billing:   b,
		Idem:      idem,
	}
}

func (s *Server) UpgradeToMaster(w http.ResponseWriter, r *http.Request) {
	if _, ok := ProfileFromContext(r.Context()); !ok {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing profile", nil)
		return
	}
	id := domain.MembershipID(chi.URLParam(r, "membershipID"))
	m, err := s.Hierarchy.UpgradeToMaster(r.Context(), id)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Membership membershipJSON `json:"membership"`
	}{membershipFromDomain(m)})
}

func (s *Server) GetMasterInfo(w http.ResponseWriter, r *http.Request) {
	if _, ok := ProfileFromContext(r.Context()); !ok {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing profile", nil)
		return
	}
	id := domain.MembershipID(chi.URLParam(r, "membershipID"))
	mi, err := s.Hierarchy.GetMasterInfo(r.Context(), id)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Master masterInfoJSON `json:"master"`
	}{masterInfoFromApp(mi)})
}

func (s *Server) ListSecondaries(w http.ResponseWriter, r *http.Request) {
	if _, ok := ProfileFromContext(r.Context()); !ok {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing profile", nil)
		return
	}
	id := domain.MembershipID(chi.URLParam(r, "membershipID"))
	secs, err := s.Hierarchy.GetSecondaryMemberships(r.Context(), id)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	out := make([]secondaryInfoJSON, 0, len(secs))
	for _, sec := range secs {
		out = append(out, secondaryInfoFromApp(sec))
	}
	writeJSON(w, http.StatusOK, struct {
		Secondaries []secondaryInfoJSON `json:"secondaries"`
	}{out})
}

// CreateSecondary provisions a secondary under the master in the path.
//
// Idempotency handling:
// - Replay the stored 201 if same actor+key+route+bodyHash
// - Reject if same actor+key+route with a different bodyHash (409)
func (s *Server) CreateSecondary(w http.ResponseWriter, r *http.Request) {
	pid, ok := ProfileFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing profile", nil)
		return
	}
	masterID := domain.MembershipID(chi.URLParam(r, "membershipID"))

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "unreadable request body", nil)
		return
	}
	var req createSecondaryRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "malformed request body", nil)
		return
	}

	idemKey := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	var bodyHash string
	if idemKey != "" && s.Idem != nil {
		sum := sha256.Sum256(body)
		bodyHash = hex.EncodeToString(sum[:])

		metaFP := idempotency.Fingerprint{
			Key:      idempotency.Key(idemKey),
			Profile:  pid,
			Method:   http.MethodPost,
			Route:    "/memberships/{membershipID}/secondaries",
			BodyHash: "",
		}
		if meta, found, err := s.Idem.Get(r.Context(), metaFP); err != nil {
			writeAppError(w, r, err)
			return
		} else if found {
			if string(meta.Body) != bodyHash {
				writeError(w, r, http.StatusConflict, "IDEMPOTENCY_KEY_REUSE", "idempotency key reuse with different payload", nil)
				return
			}
		} else {
			_ = s.Idem.Put(r.Context(), metaFP, idempotency.Record{
				ContentType: "text/plain",
				Body:        []byte(bodyHash),
				CreatedAt:   time.Now().UTC(),
			})
		}

		respFP := metaFP
		respFP.BodyHash = bodyHash
		if rec, found, err := s.Idem.Get(r.Context(), respFP); err != nil {
			writeAppError(w, r, err)
			return
		} else if found && rec.StatusCode == http.StatusCreated && strings.HasPrefix(rec.ContentType, "application/json") {
			w.Header().Set("Content-Type", rec.ContentType)
			w.WriteHeader(rec.StatusCode)
			_, _ = w.Write(rec.Body)
			return
		}
	}

	created, err := s.Hierarchy.CreateSecondary(r.Context(), hierarchy.CreateSecondaryInput{
		MasterMembershipID:   masterID,
		MembershipTypeID:     domain.MembershipTypeID(req.MembershipTypeID),
		CompetitorName:       req.CompetitorName,
		RelationshipToMaster: req.RelationshipToMaster,
		HasOwnLogin:          req.HasOwnLogin,
		Email:                req.Email,
		VehicleMake:          req.VehicleMake,
		VehicleModel:         req.VehicleModel,
		VehicleColor:         req.VehicleColor,
		VehicleLicensePlate:  req.VehicleLicensePlate,
		TeamName:             req.TeamName,
		TeamDescription:      req.TeamDescription,
	})
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	resp := struct {
		Membership membershipJSON `json:"membership"`
	}{membershipFromDomain(created)}

	respBody, err := json.Marshal(resp)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "INTERNAL", "internal server error", nil)
		return
	}

	if idemKey != "" && s.Idem != nil {
		respFP := idempotency.Fingerprint{
			Key:      idempotency.Key(idemKey),
			Profile:  pid,
			Method:   http.MethodPost,
			Route:    "/memberships/{membershipID}/secondaries",
			BodyHash: bodyHash,
		}
		_ = s.Idem.Put(r.Context(), respFP, idempotency.Record{
			StatusCode:  http.StatusCreated,
			ContentType: "application/json",
			Body:        respBody,
			CreatedAt:   time.Now().UTC(),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_, _ = w.Write(respBody)
}

func (s *Server) ListMasterInvoices(w http.ResponseWriter, r *http.Request) {
	if _, ok := ProfileFromContext(r.Context()); !ok {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing profile", nil)
		return
	}
	id := domain.MembershipID(chi.URLParam(r, "membershipID"))
	invs, err := s.Billing.ListMasterInvoices(r.Context(), id)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	out := make([]invoiceJSON, 0, len(invs))
	for _, inv := range invs {
		out = append(out, invoiceFromDomain(inv))
	}
	writeJSON(w, http.StatusOK, struct {
		Invoices []invoiceJSON `json:"invoices"`
	}{out})
}

func (s *Server) RemoveSecondary(w http.ResponseWriter, r *http.Request) {
	pid, ok := ProfileFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing profile", nil)
		return
	}
	id := domain.MembershipID(chi.URLParam(r, "secondaryID"))
	m, err := s.Hierarchy.RemoveSecondary(r.Context(), id, pid)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Membership membershipJSON `json:"membership"`
	}{membershipFromDomain(m)})
}

func (s *Server) UpgradeToIndependent(w http.ResponseWriter, r *http.Request) {
	if _, ok := ProfileFromContext(r.Context()); !ok {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing profile", nil)
		return
	}
	id := domain.MembershipID(chi.URLParam(r, "secondaryID"))
	m, err := s.Hierarchy.UpgradeToIndependent(r.Context(), id)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Membership membershipJSON `json:"membership"`
	}{membershipFromDomain(m)})
}

func (s *Server) UpdateSecondaryDetails(w http.ResponseWriter, r *http.Request) {
	pid, ok := ProfileFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing profile", nil)
		return
	}
	id := domain.MembershipID(chi.URLParam(r, "secondaryID"))

	var req updateSecondaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "malformed request body", nil)
		return
	}

	m, err := s.Hierarchy.UpdateSecondaryDetails(r.Context(), id, pid, hierarchy.UpdateSecondaryDetailsInput{
		CompetitorName:       optionalFromNullable(req.CompetitorName),
		RelationshipToMaster: optionalFromNullable(req.RelationshipToMaster),
		VehicleMake:          optionalFromNullable(req.VehicleMake),
		VehicleModel:         optionalFromNullable(req.VehicleModel),
		VehicleColor:         optionalFromNullable(req.VehicleColor),
		VehicleLicensePlate:  optionalFromNullable(req.VehicleLicensePlate),
	})
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Membership membershipJSON `json:"membership"`
	}{membershipFromDomain(m)})
}

func (s *Server) ConfirmSecondaryPayment(w http.ResponseWriter, r *http.Request) {
	if _, ok := ProfileFromContext(r.Context()); !ok {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing profile", nil)
		return
	}
	id := domain.MembershipID(chi.URLParam(r, "secondaryID"))

	var req confirmPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "malformed request body", nil)
		return
	}
	amount, err := domain.ParseMoney(req.AmountPaid)
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "invalid amountPaid", map[string]any{"amountPaid": "must be a decimal amount"})
		return
	}

	m, err := s.Hierarchy.MarkSecondaryPaid(r.Context(), id, amount, req.TransactionID)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Membership membershipJSON `json:"membership"`
	}{membershipFromDomain(m)})
}

func (s *Server) ListControlledMecaIDs(w http.ResponseWriter, r *http.Request) {
	pid, ok := ProfileFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing profile", nil)
		return
	}
	controlled, err := s.Hierarchy.GetControlledMecaIDs(r.Context(), pid)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	out := make([]controlledMecaIDJSON, 0, len(controlled))
	for _, c := range controlled {
		out = append(out, controlledMecaIDFromApp(c))
	}
	writeJSON(w, http.StatusOK, struct {
		MecaIDs []controlledMecaIDJSON `json:"mecaIds"`
	}{out})
}

func (s *Server) CheckMecaIDAccess(w http.ResponseWriter, r *http.Request) {
	pid, ok := ProfileFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing profile", nil)
		return
	}
	raw := chi.URLParam(r, "mecaID")
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "invalid MECA ID", map[string]any{"mecaId": "must be a positive integer"})
		return
	}
	has, err := s.Hierarchy.HasAccessToMecaID(r.Context(), pid, domain.MecaID(n))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		MecaID    int  `json:"mecaId"`
		HasAccess bool `json:"hasAccess"`
	}{n, has})
}

func (s *Server) GetSecondaryStatus(w http.ResponseWriter, r *http.Request) {
	pid, ok := ProfileFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing profile", nil)
		return
	}
	isSecondary, err := s.Hierarchy.IsSecondaryProfile(r.Context(), pid)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	resp := struct {
		IsSecondaryAccount bool         `json:"isSecondaryAccount"`
		MasterProfile      *profileJSON `json:"masterProfile,omitempty"`
	}{IsSecondaryAccount: isSecondary}

	if isSecondary {
		master, err := s.Hierarchy.GetMasterProfile(r.Context(), pid)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		if master != nil {
			mp := profileFromDomain(*master)
			resp.MasterProfile = &mp
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// RepairSecondaryProfiles runs the legacy shared-profile repair batch.
func (s *Server) RepairSecondaryProfiles(w http.ResponseWriter, r *http.Request) {
	if _, ok := ProfileFromContext(r.Context()); !ok {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing profile", nil)
		return
	}
	res, err := s.Hierarchy.FixSecondariesWithoutProfiles(r.Context())
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, repairResultJSON{Fixed: res.Fixed, Errors: res.Errors})
}
