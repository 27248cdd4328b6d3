package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"tonmaster/internal/game"
	"tonmaster/internal/logging"
	"tonmaster/internal/session"
)

type GameHandler struct {
	ctl *session.Controller
}

func NewGameHandler(ctl *session.Controller) *GameHandler {
	return &GameHandler{ctl: ctl}
}

type renameReq struct {
	MerchantName string `json:"merchantName" binding:"required"`
}

type chargeReq struct {
	// Amount charges directly; Keys are typed on the keypad and confirmed.
	Amount *decimal.Decimal `json:"amount"`
	Keys   string           `json:"keys"`
}

type chargeResp struct {
	Result  game.Result      `json:"result"`
	Message string           `json:"message"`
	Player  game.PlayerState `json:"player"`
}

type upgradeView struct {
	game.Upgrade
	Purchased  bool `json:"purchased"`
	Affordable bool `json:"affordable"`
}

func (h *GameHandler) GetPlayer(c *gin.Context) {
	c.JSON(http.StatusOK, h.ctl.State())
}

func (h *GameHandler) RenamePlayer(c *gin.Context) {
	var req renameReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}
	s, err := h.ctl.Rename(req.MerchantName)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *GameHandler) CompleteTutorial(c *gin.Context) {
	c.JSON(http.StatusOK, h.ctl.CompleteTutorial())
}

func (h *GameHandler) StartRound(c *gin.Context) {
	if _, err := h.ctl.StartRound(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	snap, err := h.ctl.Round()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, snap)
}

func (h *GameHandler) GetRound(c *gin.Context) {
	snap, err := h.ctl.Round()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (h *GameHandler) ToggleItem(c *gin.Context) {
	snap, err := h.ctl.Toggle(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (h *GameHandler) Charge(c *gin.Context) {
	var req chargeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}

	var (
		res game.Result
		err error
	)
	switch {
	case req.Amount != nil:
		if req.Amount.IsNegative() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "amount must not be negative"})
			return
		}
		res, err = h.ctl.Charge(*req.Amount)
	case req.Keys != "":
		keys := make([]string, 0, len(req.Keys))
		for _, r := range req.Keys {
			keys = append(keys, string(r))
		}
		res, err = h.ctl.PressAndCharge(keys...)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount or keys required"})
		return
	}
	if err != nil {
		writeError(c, err)
		return
	}

	logging.From(c).Info("charge", "outcome", res.Outcome, "entered", res.Entered)
	c.JSON(http.StatusOK, chargeResp{
		Result:  res,
		Message: game.Message(res),
		Player:  h.ctl.State(),
	})
}

func (h *GameHandler) ExitRound(c *gin.Context) {
	h.ctl.Exit()
	c.Status(http.StatusNoContent)
}

func (h *GameHandler) ListUpgrades(c *gin.Context) {
	s := h.ctl.State()
	out := make([]upgradeView, 0)
	for _, u := range game.Upgrades() {
		out = append(out, upgradeView{
			Upgrade:    u,
			Purchased:  s.HasUnlocked(u.ID),
			Affordable: s.Balance.GreaterThanOrEqual(u.Cost),
		})
	}
	c.JSON(http.StatusOK, out)
}

func (h *GameHandler) Purchase(c *gin.Context) {
	s, err := h.ctl.Purchase(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *GameHandler) ListTransactions(c *gin.Context) {
	c.JSON(http.StatusOK, h.ctl.State().Transactions)
}

func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, session.ErrNoRound),
		errors.Is(err, game.ErrUnknownItem),
		errors.Is(err, game.ErrUnknownUpgrade):
		status = http.StatusNotFound
	case errors.Is(err, session.ErrFetchInFlight),
		errors.Is(err, session.ErrRoundActive),
		errors.Is(err, session.ErrRoundDiscarded),
		errors.Is(err, game.ErrWrongPhase),
		errors.Is(err, game.ErrAlreadyUnlocked):
		status = http.StatusConflict
	case errors.Is(err, game.ErrInsufficientFunds):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, game.ErrBlankName),
		errors.Is(err, game.ErrUnknownKey):
		status = http.StatusBadRequest
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{"error": err.Error()})
}
