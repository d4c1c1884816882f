package gateway

// GatewayStatus — словарь статусов, которые шлюз присылает в webhook.
type GatewayStatus string

const (
	StatusApproved          GatewayStatus = "APPROVED"
	StatusDeclined          GatewayStatus = "DECLINED"
	StatusFailed            GatewayStatus = "FAILED"
	StatusWaiting           GatewayStatus = "WAITING"
	StatusPartiallyApproved GatewayStatus = "PARTIALLY APPROVED"
)

// Notification — form-encoded payload webhook-уведомления шлюза.
// Транспорт неаутентифицирован; подлинность подтверждает только
// notification_hash.
type Notification struct {
	ApprovalCode     string `form:"approval_code"`
	OrderID          string `form:"oid" binding:"required"`
	RefNumber        string `form:"refnumber"`
	Status           string `form:"status" binding:"required"`
	ChargeTotal      string `form:"chargetotal" binding:"required"`
	Currency         string `form:"currency"`
	TxnDateTime      string `form:"txndatetime" binding:"required"`
	StoreName        string `form:"storename"`
	NotificationHash string `form:"notification_hash" binding:"required"`

	TxnDateProcessed      string `form:"txndate_processed"`
	IPGTransactionID      string `form:"ipgTransactionId"`
	FailReason            string `form:"fail_reason"`
	ProcessorResponseCode string `form:"processor_response_code"`
	CCBrand               string `form:"ccbrand"`
	CCBin                 string `form:"ccbin"`
	CCCountry             string `form:"cccountry"`
}
