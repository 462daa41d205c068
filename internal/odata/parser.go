package odata

import (
	"fmt"
	"strings"

	"showcase/internal/models"
)

// Fields lists the article fields a filter may reference
var Fields = []string{"id", "title", "excerpt", "category", "author", "publish_date", "tags"}

type FilterParser struct{}

type FilterExpression struct {
	Operator  string
	Field     string
	Value     string
	Left      *FilterExpression
	Right     *FilterExpression
	Function  string
	Arguments []string
}

func NewFilterParser() *FilterParser {
	return &FilterParser{}
}

// Parse parses a $filter expression. An empty filter yields a nil expression,
// which matches every article.
func (p *FilterParser) Parse(filter string) (*FilterExpression, error) {
	filter = strings.TrimSpace(filter)
	if filter == "" {
		return nil, nil
	}
	return p.parseExpression(filter)
}

func (p *FilterParser) parseExpression(expr string) (*FilterExpression, error) {
	expr = strings.TrimSpace(expr)

	// or binds looser than and
	if i := indexOutsideQuotes(expr, " or "); i >= 0 {
		return p.parseLogicalOperator(expr, i, "or")
	}
	if i := indexOutsideQuotes(expr, " and "); i >= 0 {
		return p.parseLogicalOperator(expr, i, "and")
	}

	for _, op := range []string{"eq", "ne", "gt", "ge", "lt", "le"} {
		if i := indexOutsideQuotes(expr, " "+op+" "); i >= 0 {
			return p.parseComparison(expr, i, op)
		}
	}

	for _, fn := range []string{"startswith", "endswith", "contains"} {
		if strings.HasPrefix(strings.ToLower(expr), fn+"(") {
			return p.parseFunction(expr, fn)
		}
	}

	return nil, fmt.Errorf("unable to parse expression: %s", expr)
}

// indexOutsideQuotes finds sep case-insensitively, ignoring quoted text
func indexOutsideQuotes(expr, sep string) int {
	lower := strings.ToLower(expr)
	var quote byte
	for i := 0; i < len(lower); i++ {
		c := lower[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case strings.HasPrefix(lower[i:], sep):
			return i
		}
	}
	return -1
}

func (p *FilterParser) parseLogicalOperator(expr string, opIndex int, op string) (*FilterExpression, error) {
	left, err := p.parseExpression(expr[:opIndex])
	if err != nil {
		return nil, err
	}
	right, err := p.parseExpression(expr[opIndex+len(op)+2:])
	if err != nil {
		return nil, err
	}

	return &FilterExpression{
		Operator: op,
		Left:     left,
		Right:    right,
	}, nil
}

func (p *FilterParser) parseComparison(expr string, opIndex int, op string) (*FilterExpression, error) {
	field := strings.ToLower(strings.TrimSpace(expr[:opIndex]))
	value := strings.TrimSpace(expr[opIndex+len(op)+2:])
	if err := checkField(field); err != nil {
		return nil, err
	}
	if value == "" {
		return nil, fmt.Errorf("invalid comparison expression: %s", expr)
	}

	return &FilterExpression{
		Operator: op,
		Field:    field,
		Value:    strings.Trim(value, "'\""),
	}, nil
}

func (p *FilterParser) parseFunction(expr string, funcName string) (*FilterExpression, error) {
	// e.g. startswith(title, 'The') -> title, 'The'
	argsStart := strings.Index(expr, "(")
	argsEnd := strings.LastIndex(expr, ")")
	if argsStart == -1 || argsEnd < argsStart {
		return nil, fmt.Errorf("invalid function call: %s", expr)
	}

	args := p.parseFunctionArguments(expr[argsStart+1 : argsEnd])
	if len(args) != 2 {
		return nil, fmt.Errorf("function %s expects 2 arguments, got %d", funcName, len(args))
	}

	field := strings.ToLower(args[0])
	if err := checkField(field); err != nil {
		return nil, err
	}

	return &FilterExpression{
		Function:  funcName,
		Field:     field,
		Value:     args[1],
		Arguments: args,
	}, nil
}

func (p *FilterParser) parseFunctionArguments(argsStr string) []string {
	var args []string
	var currentArg strings.Builder
	var inQuotes bool
	var quoteChar byte

	for i := 0; i < len(argsStr); i++ {
		char := argsStr[i]

		if !inQuotes && (char == '\'' || char == '"') {
			inQuotes = true
			quoteChar = char
			continue
		}

		if inQuotes && char == quoteChar {
			inQuotes = false
			continue
		}

		if !inQuotes && char == ',' {
			args = append(args, strings.TrimSpace(currentArg.String()))
			currentArg.Reset()
			continue
		}

		currentArg.WriteByte(char)
	}

	if currentArg.Len() > 0 {
		args = append(args, strings.TrimSpace(currentArg.String()))
	}

	return args
}

func checkField(field string) error {
	for _, f := range Fields {
		if field == f {
			return nil
		}
	}
	return fmt.Errorf("unknown filter field '%s'", field)
}

func (p *FilterParser) Evaluate(expr *FilterExpression, article models.Article) (bool, error) {
	if expr == nil {
		return true, nil
	}

	switch {
	case expr.Operator == "and":
		left, err := p.Evaluate(expr.Left, article)
		if err != nil || !left {
			return false, err
		}
		return p.Evaluate(expr.Right, article)

	case expr.Operator == "or":
		left, err := p.Evaluate(expr.Left, article)
		if err != nil {
			return false, err
		}
		if left {
			return true, nil
		}
		return p.Evaluate(expr.Right, article)

	case expr.Function != "":
		return p.evaluateFunction(expr, article)

	case expr.Operator != "" && expr.Field != "":
		return p.evaluateComparison(expr, article)
	}

	return false, fmt.Errorf("invalid filter expression")
}

// Filter returns the articles matching expr, keeping their order
func (p *FilterParser) Filter(expr *FilterExpression, articles []models.Article) ([]models.Article, error) {
	if expr == nil {
		return articles, nil
	}

	matched := make([]models.Article, 0, len(articles))
	for _, a := range articles {
		ok, err := p.Evaluate(expr, a)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, a)
		}
	}
	return matched, nil
}

func (p *FilterParser) evaluateComparison(expr *FilterExpression, article models.Article) (bool, error) {
	if expr.Field == "tags" && (expr.Operator == "eq" || expr.Operator == "ne") {
		has := false
		for _, tag := range article.Tags {
			if strings.EqualFold(tag, expr.Value) {
				has = true
				break
			}
		}
		return has == (expr.Operator == "eq"), nil
	}

	cmp := strings.Compare(strings.ToLower(p.getFieldValue(expr.Field, article)), strings.ToLower(expr.Value))

	switch expr.Operator {
	case "eq":
		return cmp == 0, nil
	case "ne":
		return cmp != 0, nil
	case "gt":
		return cmp > 0, nil
	case "ge":
		return cmp >= 0, nil
	case "lt":
		return cmp < 0, nil
	case "le":
		return cmp <= 0, nil
	default:
		return false, fmt.Errorf("unsupported comparison operator: %s", expr.Operator)
	}
}

func (p *FilterParser) evaluateFunction(expr *FilterExpression, article models.Article) (bool, error) {
	fieldValue := strings.ToLower(p.getFieldValue(expr.Field, article))
	searchValue := strings.ToLower(expr.Value)

	switch expr.Function {
	case "startswith":
		return strings.HasPrefix(fieldValue, searchValue), nil
	case "endswith":
		return strings.HasSuffix(fieldValue, searchValue), nil
	case "contains":
		return strings.Contains(fieldValue, searchValue), nil
	default:
		return false, fmt.Errorf("unsupported function: %s", expr.Function)
	}
}

// getFieldValue renders a field as text. Dates use YYYY-MM-DD so they
// compare correctly as strings.
func (p *FilterParser) getFieldValue(field string, article models.Article) string {
	switch field {
	case "id":
		return article.ID
	case "title":
		return article.Title
	case "excerpt":
		return article.Excerpt
	case "category":
		return string(article.Category)
	case "author":
		return article.Author.Name
	case "publish_date":
		return article.PublishedOn()
	case "tags":
		return strings.Join(article.Tags, ", ")
	default:
		return ""
	}
}
