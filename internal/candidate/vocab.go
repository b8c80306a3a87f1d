package candidate

import "strings"

// roleMap is the controlled vocabulary for desired positions. Keys are
// lowercased aliases, values are the canonical labels. Matching is exact,
// never fuzzy: anything outside the table is dropped.
var roleMap = map[string]string{
	"aiml engineer":             "ML Engineer",
	"ml engineer":               "ML Engineer",
	"machine learning engineer": "ML Engineer",
	"mle":                       "ML Engineer",
	"data scientist":            "Data Scientist",
	"backend engineer":          "Backend Engineer",
	"backend developer":         "Backend Engineer",
	"frontend engineer":         "Frontend Engineer",
	"frontend developer":        "Frontend Engineer",
	"fullstack engineer":        "Fullstack Engineer",
	"fullstack developer":       "Fullstack Engineer",
	"software engineer":         "Software Engineer",
	"software developer":        "Software Engineer",
	"python developer":          "Python Developer",
	"go developer":              "Go Developer",
	"golang developer":          "Go Developer",
	"devops engineer":           "DevOps Engineer",
	"ai developer":              "AI Developer",
	"data engineer":             "Data Engineer",
}

// countryTable maps lowercased country spellings to canonical country names.
var countryTable = map[string]string{
	"india":          "India",
	"bangladesh":     "Bangladesh",
	"united states":  "United States",
	"usa":            "United States",
	"us":             "United States",
	"china":          "China",
	"germany":        "Germany",
	"united kingdom": "United Kingdom",
	"uk":             "United Kingdom",
	"canada":         "Canada",
	"australia":      "Australia",
	"france":         "France",
	"netherlands":    "Netherlands",
	"japan":          "Japan",
	"brazil":         "Brazil",
}

type cityKey struct {
	city    string
	country string
}

// cityCatalog holds canonical display strings for (city, country) pairs that
// have an exact catalog entry. Keys use lowercased city and canonical country.
var cityCatalog = map[cityKey]string{
	{"surat", "India"}:                 "Surat, India",
	{"mumbai", "India"}:                "Mumbai, India",
	{"bengaluru", "India"}:             "Bengaluru, India",
	{"bangalore", "India"}:             "Bengaluru, India",
	{"dhaka", "Bangladesh"}:            "Dhaka, Bangladesh",
	{"new york", "United States"}:      "New York, United States",
	{"san francisco", "United States"}: "San Francisco, United States",
	{"london", "United Kingdom"}:       "London, United Kingdom",
	{"berlin", "Germany"}:              "Berlin, Germany",
	{"amsterdam", "Netherlands"}:       "Amsterdam, Netherlands",
}

// technology describes a known technology with its display casing and
// tech stack category.
type technology struct {
	display  string
	category string
}

// techCatalog maps lowercased technology keywords to display names and
// categories. Used for canonical casing and for the stub oracle's keyword
// matching.
var techCatalog = map[string]technology{
	"python":        {"Python", CategoryLanguage},
	"javascript":    {"JavaScript", CategoryLanguage},
	"typescript":    {"TypeScript", CategoryLanguage},
	"java":          {"Java", CategoryLanguage},
	"go":            {"Go", CategoryLanguage},
	"golang":        {"Go", CategoryLanguage},
	"rust":          {"Rust", CategoryLanguage},
	"ruby":          {"Ruby", CategoryLanguage},
	"c++":           {"C++", CategoryLanguage},
	"c#":            {"C#", CategoryLanguage},
	"php":           {"PHP", CategoryLanguage},
	"kotlin":        {"Kotlin", CategoryLanguage},
	"swift":         {"Swift", CategoryLanguage},
	"react":         {"React", CategoryFramework},
	"angular":       {"Angular", CategoryFramework},
	"vue":           {"Vue", CategoryFramework},
	"django":        {"Django", CategoryFramework},
	"flask":         {"Flask", CategoryFramework},
	"fastapi":       {"FastAPI", CategoryFramework},
	"spring":        {"Spring", CategoryFramework},
	"rails":         {"Rails", CategoryFramework},
	"node":          {"Node.js", CategoryFramework},
	"node.js":       {"Node.js", CategoryFramework},
	"nodejs":        {"Node.js", CategoryFramework},
	"express":       {"Express", CategoryFramework},
	"sql":           {"SQL", CategoryDatabase},
	"mysql":         {"MySQL", CategoryDatabase},
	"postgresql":    {"PostgreSQL", CategoryDatabase},
	"postgres":      {"PostgreSQL", CategoryDatabase},
	"mongodb":       {"MongoDB", CategoryDatabase},
	"redis":         {"Redis", CategoryDatabase},
	"elasticsearch": {"Elasticsearch", CategoryDatabase},
	"sqlite":        {"SQLite", CategoryDatabase},
	"cassandra":     {"Cassandra", CategoryDatabase},
	"aws":           {"AWS", CategoryTool},
	"gcp":           {"GCP", CategoryTool},
	"azure":         {"Azure", CategoryTool},
	"docker":        {"Docker", CategoryTool},
	"kubernetes":    {"Kubernetes", CategoryTool},
	"terraform":     {"Terraform", CategoryTool},
	"git":           {"Git", CategoryTool},
	"jenkins":       {"Jenkins", CategoryTool},
	"kafka":         {"Kafka", CategoryTool},
	"grafana":       {"Grafana", CategoryTool},
}

// LookupCountry resolves a country spelling to its canonical name.
func LookupCountry(raw string) (string, bool) {
	name, ok := countryTable[strings.ToLower(strings.TrimSpace(raw))]
	return name, ok
}

// LookupTechnology resolves a technology keyword to its display name and
// category. The second return is false for unknown keywords.
func LookupTechnology(raw string) (string, string, bool) {
	tech, ok := techCatalog[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		return "", "", false
	}
	return tech.display, tech.category, true
}

// TechnologyKeywords returns all known technology keywords, for
// containment-based extraction.
func TechnologyKeywords() []string {
	keywords := make([]string, 0, len(techCatalog))
	for k := range techCatalog {
		keywords = append(keywords, k)
	}
	return keywords
}
