package express

import (
	"strconv"
	"strings"

	"github.com/kevin07696/express-gateway/internal/domain/models"
	"github.com/kevin07696/express-gateway/internal/domain/ports"
	"github.com/kevin07696/express-gateway/pkg/observability"
)

// ResponseCodeApproved is the single ExpressResponseCode that means success
const ResponseCodeApproved = "0"

// ResponseCodeProxyError is the code synthesized for tokenization proxy failures
const ResponseCodeProxyError = "103"

// ResponseCodeInfo describes a vendor ExpressResponseCode
type ResponseCodeInfo struct {
	Code    int
	Display string
	Reason  models.DeclineReason
}

// declineReasons maps vendor ExpressResponseCode values to canonical decline reasons
var declineReasons = map[int]ResponseCodeInfo{
	20:  {Code: 20, Display: "DECLINED", Reason: models.DeclineReasonDeclined},
	104: {Code: 104, Display: "AUTHORIZATION FAILED", Reason: models.DeclineReasonDeclined},
	105: {Code: 105, Display: "NOT AUTHORIZED", Reason: models.DeclineReasonDeclined},

	21: {Code: 21, Display: "EXPIRED CARD", Reason: models.DeclineReasonExpired},

	23: {Code: 23, Display: "DUPLICATE", Reason: models.DeclineReasonDuplicate},

	26:  {Code: 26, Display: "NON-FINANCIAL CARD", Reason: models.DeclineReasonInvalid},
	90:  {Code: 90, Display: "NOT DEFINED", Reason: models.DeclineReasonInvalid},
	101: {Code: 101, Display: "INVALID DATA", Reason: models.DeclineReasonInvalid},
	102: {Code: 102, Display: "INVALID ACCOUNT", Reason: models.DeclineReasonInvalid},
	103: {Code: 103, Display: "INVALID REQUEST", Reason: models.DeclineReasonInvalid},

	24: {Code: 24, Display: "PICK UP CARD", Reason: models.DeclineReasonFraud},

	30:  {Code: 30, Display: "BALANCE NOT AVAILABLE", Reason: models.DeclineReasonInsufficientFunds},
	120: {Code: 120, Display: "OUT OF BALANCE", Reason: models.DeclineReasonInsufficientFunds},

	1001: {Code: 1001, Display: "COMMUNICATION ERROR", Reason: models.DeclineReasonError},
	1002: {Code: 1002, Display: "HOST ERROR", Reason: models.DeclineReasonError},
	1009: {Code: 1009, Display: "ERROR", Reason: models.DeclineReasonError},

	25: {Code: 25, Display: "REFERRAL CALL ISSUER", Reason: models.DeclineReasonContactFinancialInstitution},
}

// GetResponseCode retrieves information for a vendor response code
func GetResponseCode(code int) (ResponseCodeInfo, bool) {
	info, ok := declineReasons[code]
	return info, ok
}

// MapDeclineReason maps a vendor response code to a canonical decline reason.
// Unknown codes fall back to DECLINED and emit one warning naming the gateway
// and the raw code.
func MapDeclineReason(code int, logger ports.Logger, gateway string) models.DeclineReason {
	if info, ok := declineReasons[code]; ok {
		return info.Reason
	}

	raw := strconv.Itoa(code)
	warnUnmapped(logger, gateway, raw)
	return models.DeclineReasonDeclined
}

// mapDeclineReasonString maps a raw response code string, treating a
// non-numeric code the same as an unmapped one
func mapDeclineReasonString(raw string, logger ports.Logger, gateway string) models.DeclineReason {
	code, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		warnUnmapped(logger, gateway, raw)
		return models.DeclineReasonDeclined
	}
	return MapDeclineReason(code, logger, gateway)
}

func warnUnmapped(logger ports.Logger, gateway, raw string) {
	if logger != nil {
		logger.Warn("Unmapped gateway response code, defaulting decline reason",
			ports.String("gateway", gateway),
			ports.String("response_code", raw),
			ports.String("decline_reason", string(models.DeclineReasonDeclined)),
		)
	}
	observability.RecordUnmappedResponseCode(gateway, raw)
}
