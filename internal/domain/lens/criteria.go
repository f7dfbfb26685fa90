// Package lens builds the filter catalogue shown by the data explorer. Every
// criterion is derived from the same code tables that feed the generated
// resources and the published CodeSystems.
package lens

// ConditionType is a comparison a criterion category allows.
type ConditionType string

const (
	ConditionEquals      ConditionType = "EQUALS"
	ConditionNotEquals   ConditionType = "NOT_EQUALS"
	ConditionIn          ConditionType = "IN"
	ConditionBetween     ConditionType = "BETWEEN"
	ConditionLowerThan   ConditionType = "LOWER_THAN"
	ConditionGreaterThan ConditionType = "GREATER_THAN"
	ConditionContains    ConditionType = "CONTAINS"
)

// Operand joins criteria in a query.
type Operand string

const (
	OperandAnd Operand = "AND"
	OperandOr  Operand = "OR"
	OperandNot Operand = "NOT"
	OperandXor Operand = "XOR"
)

// Operands lists the operand vocabulary in display order.
func Operands() []Operand {
	return []Operand{OperandAnd, OperandOr, OperandNot, OperandXor}
}

// Criteria is one selectable value.
type Criteria struct {
	Key         string `json:"key" yaml:"key"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	DE          string `json:"de,omitempty" yaml:"de,omitempty"`
}
