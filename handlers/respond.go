package handlers

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"

	"proofpass-backend/core"
)

// abortStatus maps protocol abort codes onto HTTP statuses in one place.
// Callers translate codes to text; they never guess a friendlier meaning
// for a code that is not documented.
func abortStatus(code core.AbortCode) int {
	switch code {
	case core.CodeNotOrganizer, core.CodeNotSponsor:
		return http.StatusForbidden
	case core.CodeEventNotFound, core.CodeEscrowNotFound, core.CodeAirdropNotFound, core.CodeNotRegistered:
		return http.StatusNotFound
	case core.CodeAlreadyRegistered, core.CodeAlreadyClaimed, core.CodeAlreadySettled,
		core.CodeAlreadyRated, core.CodeInvalidState:
		return http.StatusConflict
	case core.CodeInvalidCapability:
		return http.StatusUnauthorized
	default:
		return http.StatusBadRequest
	}
}

// abortJSON writes an abort as the documented error surface: numeric code
// plus reason. Non-abort errors surface as 500.
func abortJSON(c *gin.Context, err error) {
	code, ok := core.CodeOf(err)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(abortStatus(code), gin.H{
		"error": err.Error(),
		"code":  code,
	})
}

// parseAddress validates and normalizes a hex wallet address from a request.
func parseAddress(c *gin.Context, raw string) (common.Address, bool) {
	if !common.IsHexAddress(raw) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid wallet address: " + raw})
		return common.Address{}, false
	}
	return common.HexToAddress(raw), true
}
