package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/ghuser/contractflow/pkg/auth"
	"github.com/ghuser/contractflow/pkg/errhttp"
	"github.com/ghuser/contractflow/pkg/httpx"
	"github.com/ghuser/contractflow/pkg/logger"
	pkgvalidator "github.com/ghuser/contractflow/pkg/validator"
	appsvcs "github.com/ghuser/contractflow/services/user/application/services"
	"github.com/ghuser/contractflow/services/user/domain/models"
)

// CreateUserRequest is the body of POST /create-user.
type CreateUserRequest struct {
	Nome             string   `json:"nome" validate:"required,max=255" example:"Giulia Verdi"`
	Email            string   `json:"email" validate:"required,email" example:"giulia@example.com"`
	Password         string   `json:"password" validate:"required,min=8,max=72"`
	Ruolo            string   `json:"ruolo" validate:"required,oneof=admin 'back office' consulente master" example:"consulente"`
	Stato            string   `json:"stato" validate:"required,oneof=attivo sospeso" example:"attivo"`
	PianoCompensi    string   `json:"pianoCompensi,omitempty" validate:"max=255"`
	GestoriAssegnati []string `json:"gestoriAssegnati,omitempty" validate:"dive,max=64"`
	Master           string   `json:"master,omitempty" validate:"max=255"`
} // @name CreateUserRequest

// CreateUserResponse is returned on successful user creation.
type CreateUserResponse struct {
	Success bool      `json:"success"`
	UID     uuid.UUID `json:"uid" example:"123e4567-e89b-12d3-a456-426614174000"`
	Message string    `json:"message"`
} // @name CreateUserResponse

// CreateUserHandler handles POST /create-user.
type CreateUserHandler struct {
	svc        *appsvcs.Services
	log        logger.Logger
	production bool
}

// NewCreateUserHandler returns a CreateUserHandler backed by the given services.
func NewCreateUserHandler(svc *appsvcs.Services, log logger.Logger, production bool) *CreateUserHandler {
	return &CreateUserHandler{svc: svc, log: log, production: production}
}

// Execute creates a user account.
//
//	@Summary		Create user
//	@Description	Creates an account in the user directory. Admin only.
//	@Tags			users
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateUserRequest	true	"User"
//	@Success		201		{object}	CreateUserResponse
//	@Failure		400		{object}	pkgvalidator.FieldErrorBody
//	@Failure		403		{object}	httpx.ErrorBody
//	@Failure		409		{object}	httpx.ErrorBody
//	@Router			/create-user [post]
func (h *CreateUserHandler) Execute(w http.ResponseWriter, r *http.Request) {
	p, err := auth.PrincipalFromCtx(r.Context())
	if err != nil {
		httpx.JSONError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	req, ok := pkgvalidator.ValidateRequest[CreateUserRequest](w, r)
	if !ok {
		return
	}

	u, err := h.svc.User.Create(r.Context(), appsvcs.CreateUserInput{
		NewUserInput: models.NewUserInput{
			Name:              req.Nome,
			Email:             req.Email,
			Role:              req.Ruolo,
			Status:            req.Stato,
			CompensationPlan:  req.PianoCompensi,
			AssignedProviders: req.GestoriAssegnati,
			MasterID:          req.Master,
		},
		Password: req.Password,
	}, p.ID, p.Role)
	if err != nil {
		errhttp.Respond(w, r, h.log, h.production, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, CreateUserResponse{
		Success: true,
		UID:     u.ID,
		Message: "Utente creato",
	})
}
