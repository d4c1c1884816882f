package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Денежные суммы хранятся в минимальных единицах (int64), а на проводе
// шлюза всегда представлены десятичной строкой с двумя знаками.
// float в сериализацию не попадает никогда: строка участвует в подписи.

// FormatAmountMinor форматирует сумму в строку вида "100.00".
func FormatAmountMinor(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s%d.%02d", sign, minor/100, minor%100)
}

// ParseAmount разбирает десятичную строку шлюза ("100", "100.5", "100.00")
// в минимальные единицы. Более двух знаков после точки — ошибка формата.
func ParseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("amount is empty")
	}

	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}

	intPart := s
	fracPart := ""
	if idx := strings.IndexByte(s, '.'); idx >= 0 {
		intPart, fracPart = s[:idx], s[idx+1:]
	}
	if intPart == "" {
		intPart = "0"
	}
	if len(fracPart) > 2 {
		return 0, fmt.Errorf("amount %q has more than two decimal places", s)
	}
	for len(fracPart) < 2 {
		fracPart += "0"
	}

	units, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}
	cents, err := strconv.ParseInt(fracPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}

	minor := units*100 + cents
	if neg {
		minor = -minor
	}
	return minor, nil
}
