package materialize

import (
	"path"
	"strings"
)

// Category is the coarse tag attached to every class node of a pass.
type Category string

const (
	CategoryDiscipline Category = "DISCIPLINE"
	CategoryDomain     Category = "DOMAIN"
	CategorySpecies    Category = "SPECIES"
	CategoryGeneric    Category = "GENERIC"
)

type categoryRule struct {
	tokens   []string
	category Category
}

// Order matters: the first rule with a matching token wins.
var categoryRules = []categoryRule{
	{tokens: []string{"discipline", "srao"}, category: CategoryDiscipline},
	{tokens: []string{"domain", "drao", "fairsharing"}, category: CategoryDomain},
	{tokens: []string{"taxon", "ncbi", "species"}, category: CategorySpecies},
}

// Classify derives the category of a source from the lower-cased base name of its identifier.
func Classify(source string) Category {
	name := strings.ToLower(path.Base(strings.ReplaceAll(source, `\`, "/")))
	for _, rule := range categoryRules {
		for _, token := range rule.tokens {
			if strings.Contains(name, token) {
				return rule.category
			}
		}
	}
	return CategoryGeneric
}

// Categories lists every tag Classify can return.
func Categories() []Category {
	return []Category{CategoryDiscipline, CategoryDomain, CategorySpecies, CategoryGeneric}
}
