package dto

// ImportRow CSV 导入的一行，name 和 phone 必填
type ImportRow struct {
	Name     string `csv:"name" validate:"required"`
	Phone    string `csv:"phone" validate:"required"`
	Birthday string `csv:"birthday"`
	Notes    string `csv:"notes"`
}

// ImportResult 导入结果
type ImportResult struct {
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
}
