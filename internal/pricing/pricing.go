package pricing

// 税・送料は注文組み立てに差し込む関数にする。
// 地域別の税率が必要になったらここだけ差し替える。

// 小計（最小通貨単位）から税額を出す
type TaxPolicy func(subtotal int64) int64

// 小計から送料を出す
type ShippingPolicy func(subtotal int64) int64

// 固定税率（%）。端数は切り捨て。
func FixedRateTax(percent int64) TaxPolicy {
	return func(subtotal int64) int64 {
		if subtotal <= 0 {
			return 0
		}
		return subtotal * percent / 100
	}
}

// 送料一律
func FlatShipping(fee int64) ShippingPolicy {
	return func(subtotal int64) int64 {
		return fee
	}
}

// 一定額以上は送料無料。threshold<=0なら常に一律。
func FlatShippingWithFreeThreshold(fee int64, threshold int64) ShippingPolicy {
	return func(subtotal int64) int64 {
		if threshold > 0 && subtotal >= threshold {
			return 0
		}
		return fee
	}
}
