package service

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"Lee_Meetup/internal/pkg"
)

const msgBadCapacity = "maxAttendees must be a non-negative integer"

// Capacity 原样保存请求里的 maxAttendees，由 Value 统一转换
type Capacity struct {
	raw json.RawMessage
}

// CapacityOf 代码里直接指定人数上限
func CapacityOf(n int) Capacity {
	return Capacity{raw: json.RawMessage(strconv.Itoa(n))}
}

func (c *Capacity) UnmarshalJSON(b []byte) error {
	c.raw = append(c.raw[:0], b...)
	return nil
}

func (c Capacity) MarshalJSON() ([]byte, error) {
	if len(c.raw) == 0 {
		return []byte("null"), nil
	}
	return c.raw, nil
}

// Value 缺省、null、""、0 表示不限人数；小数向零截断；负数和非数字报错
func (c Capacity) Value() (*int, error) {
	raw := bytes.TrimSpace(c.raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	var f float64
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, pkg.Validation(msgBadCapacity)
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, pkg.Validation(msgBadCapacity)
		}
		f = v
	default:
		if err := json.Unmarshal(raw, &f); err != nil {
			return nil, pkg.Validation(msgBadCapacity)
		}
	}

	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return nil, pkg.Validation(msgBadCapacity)
	}
	f = math.Trunc(f)
	if f == 0 {
		return nil, nil
	}
	n := math.MaxInt
	if f < float64(math.MaxInt) {
		n = int(f)
	}
	return &n, nil
}
