package calculator

import "math"

// calcRate 计算增速；基期为 0 时按 0 处理（不是真实增速）
func calcRate(current, baseline float64) float64 {
	if baseline == 0 {
		return 0
	}
	return (current - baseline) / baseline
}

// mean 算术平均；调用方保证 values 非空
func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// sampleStddev 样本标准差（除以 n-1），n < 2 时不可用
func sampleStddev(values []float64, avg float64) *float64 {
	n := len(values)
	if n < 2 {
		return nil
	}
	var ss float64
	for _, v := range values {
		d := v - avg
		ss += d * d
	}
	sd := math.Sqrt(ss / float64(n-1))
	return &sd
}

// ratio 返回 a / b 的指针，便于表达“不适用”
func ratio(a, b float64) *float64 {
	r := a / b
	return &r
}
