package amap

// AMap POI category codes. The full table is published in the provider's
// category code download; only the codes the assistant exposes plus a few
// common travel categories are listed here.
const (
	CategoryRestaurant        = "050000"
	CategoryChineseRestaurant = "050100"
	CategoryWesternRestaurant = "050200"
	CategoryFastFood          = "050300"
	CategoryCafe              = "050500"

	CategoryShopping    = "060000"
	CategoryMall        = "060100"
	CategorySupermarket = "060400"

	CategoryGasStation      = "010100"
	CategoryChargingStation = "011100"
	CategoryParking         = "150900"

	CategoryHotel  = "100000"
	CategoryScenic = "110000"
)

// categoryCodes maps the assistant-facing category names to provider codes.
// The key set must stay in sync with the search_poi_along_route tool enum.
var categoryCodes = map[string]string{
	"restaurant":         CategoryRestaurant,
	"chinese_restaurant": CategoryChineseRestaurant,
	"western_restaurant": CategoryWesternRestaurant,
	"gas_station":        CategoryGasStation,
	"cafe":               CategoryCafe,
	"hotel":              CategoryHotel,
	"mall":               CategoryMall,
}

// CategoryCode resolves an assistant-facing category name to a provider
// category code. Unknown names return "", which searches all categories.
func CategoryCode(name string) string {
	return categoryCodes[name]
}
