package parser

// Field 快照中的逻辑字段
type Field int

const (
	FieldSector Field = iota
	FieldResellerCode
	FieldResellerName
	FieldBillingCycle
	FieldProductCode
	FieldProductName
	FieldItemQuantity
	FieldAmount
	FieldKind
	fieldCount
)

// String 字段名
func (f Field) String() string {
	switch f {
	case FieldSector:
		return "sector"
	case FieldResellerCode:
		return "resellerCode"
	case FieldResellerName:
		return "resellerName"
	case FieldBillingCycle:
		return "billingCycle"
	case FieldProductCode:
		return "productCode"
	case FieldProductName:
		return "productName"
	case FieldItemQuantity:
		return "itemQuantity"
	case FieldAmount:
		return "amount"
	case FieldKind:
		return "kind"
	}
	return "unknown"
}

// fieldAliases 各字段可接受的表头写法，按优先级排列
var fieldAliases = [fieldCount][]string{
	FieldSector:       {"Setor", "setor", "SETOR"},
	FieldResellerCode: {"CodigoRevendedor", "codigoRevendedor", "CODIGOREVENDEDOR", "Código Revendedor"},
	FieldResellerName: {"NomeRevendedora", "nomeRevendedora", "NOMEREVENDEDORA", "Nome Revendedora"},
	FieldBillingCycle: {"CicloFaturamento", "cicloFaturamento", "CICLOFATURAMENTO", "Ciclo Faturamento"},
	FieldProductCode:  {"CodigoProduto", "codigoProduto", "CODIGOPRODUTO", "Código Produto"},
	FieldProductName:  {"NomeProduto", "nomeProduto", "NOMEPRODUTO", "Nome Produto"},
	FieldItemQuantity: {"QuantidadeItens", "quantidadeItens", "QUANTIDADEITENS", "Quantidade Itens"},
	FieldAmount:       {"ValorPraticado", "valorPraticado", "VALORPRATICADO", "Valor Praticado"},
	FieldKind:         {"Tipo", "tipo", "TIPO"},
}

// FieldMapper 表头映射：逻辑字段 -> 候选列（按别名优先级）
type FieldMapper struct {
	columns [fieldCount][]int
}

// NewFieldMapper 根据表头构建映射
func NewFieldMapper(headers []string) *FieldMapper {
	// 同名表头取第一次出现的列
	position := make(map[string]int, len(headers))
	for i, h := range headers {
		name := NormalizeColumnName(h)
		if name == "" {
			continue
		}
		if _, ok := position[name]; !ok {
			position[name] = i
		}
	}

	m := &FieldMapper{}
	for f := Field(0); f < fieldCount; f++ {
		for _, alias := range fieldAliases[f] {
			if col, ok := position[alias]; ok {
				m.columns[f] = append(m.columns[f], col)
			}
		}
	}
	return m
}

// Has 表头中是否存在该字段
func (m *FieldMapper) Has(f Field) bool {
	return len(m.columns[f]) > 0
}

// Missing 缺失的字段
func (m *FieldMapper) Missing() []Field {
	var out []Field
	for f := Field(0); f < fieldCount; f++ {
		if !m.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

// Value 取字段值：第一个非空的别名列胜出，未找到返回空串
func (m *FieldMapper) Value(row []string, f Field) string {
	for _, col := range m.columns[f] {
		if col < len(row) && row[col] != "" {
			return row[col]
		}
	}
	return ""
}
