package search

import "strings"

// Document is one retrievable source served by the stub backend.
type Document struct {
	Name     string
	Category string
	Content  string
}

// Corpus is a fixed, in-memory document set.
type Corpus struct {
	docs   []Document
	byName map[string]Document
}

func NewCorpus(docs []Document) *Corpus {
	c := &Corpus{docs: docs, byName: make(map[string]Document, len(docs))}
	for _, d := range docs {
		c.byName[d.Name] = d
	}
	return c
}

func (c *Corpus) Get(name string) (Document, bool) {
	d, ok := c.byName[name]
	return d, ok
}

func (c *Corpus) All() []Document {
	return c.docs
}

// DefaultCorpus backs the example questions offered by the chat client.
func DefaultCorpus() *Corpus {
	return NewCorpus([]Document{
		{
			Name:     "citrix-overview.txt",
			Category: "it",
			Content: "Citrix is a software company that provides application and desktop virtualization. " +
				"Citrix Virtual Apps and Desktops delivers Windows applications to any device. " +
				"Citrix Workspace is the client used to launch published resources.",
		},
		{
			Name:     "citrix-access.txt",
			Category: "it",
			Content: "Access to Citrix Workspace is requested through the IT service portal. " +
				"Approval by a line manager is required before an account is provisioned.",
		},
		{
			Name:     "sap-learning-hub.txt",
			Category: "training",
			Content: "SAP Learning Hub is the cloud training platform for SAP courses. " +
				"To get access to SAP Learning Hub, open a training request and select the SAP Learning Hub license. " +
				"Licenses are assigned within two business days.",
		},
		{
			Name:     "azure-functionalities.txt",
			Category: "cloud",
			Content: "Azure provides virtual machines for compute. " +
				"Azure Storage offers blob, file and queue storage. " +
				"Azure Active Directory manages identities. " +
				"Azure Kubernetes Service runs containers. " +
				"Azure Monitor collects metrics and logs.",
		},
		{
			Name:     "benefits-policy.txt",
			Category: "hr",
			Content: "Employees are eligible for health benefits after thirty days. " +
				"Performance reviews happen twice a year.",
		},
	})
}

func tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	out := fields[:0]
	for _, f := range fields {
		if len(f) > 2 && !stopWords[f] {
			out = append(out, f)
		}
	}
	return out
}

var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "you": true, "can": true, "what": true,
	"how": true, "get": true, "are": true, "does": true, "with": true, "list": true,
	"top": true, "tell": true, "more": true, "about": true, "detail": true,
}

func sentences(s string) []string {
	parts := strings.SplitAfter(s, ". ")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
