package network

// API paths for the outbound fulfillment API, version 2020-07-01.
const (
	createFulfillmentOrderPath = "/fba/outbound/2020-07-01/fulfillmentOrders"
	trackingPathPrefix         = "/fba/outbound/2020-07-01/tracking/"
)

// Product entry fields. "ammount" is the spelling used by the order backend.
const (
	productSKUKey      = "sku"
	productCodeKey     = "product_code"
	productQuantityKey = "ammount"
)

// Order fields that feed the destination address.
const (
	orderBuyerNameKey = "buyer_name"
	orderStreetKey    = "shipping_street"
	orderCountryKey   = "shipping_country"
	orderStateKey     = "shipping_state"
	orderCityKey      = "shipping_city"
	orderZipKey       = "shipping_zip"
)

// CreateFulfillmentOrderRequest is the createFulfillmentOrder payload.
type CreateFulfillmentOrderRequest struct {
	SellerFulfillmentOrderID string             `json:"sellerFulfillmentOrderId"`
	DisplayableOrderID       string             `json:"displayableOrderId"`
	DestinationAddress       DestinationAddress `json:"destinationAddress"`
	Items                    []LineItem         `json:"items"`
}

// DestinationAddress is the ship-to address.
type DestinationAddress struct {
	Name          string `json:"name"`
	AddressLine1  string `json:"addressLine1"`
	CountryCode   string `json:"countryCode"`
	StateOrRegion string `json:"stateOrRegion"`
	City          string `json:"city"`
	PostalCode    string `json:"postalCode"`
	Phone         string `json:"phone"`
}

// LineItem is a single shippable item.
type LineItem struct {
	SellerSKU string `json:"sellerSku"`
	Quantity  int    `json:"quantity"`
}
