package maven

import "encoding/xml"

type POM struct {
	XMLName              xml.Name              `xml:"project"`
	Xmlns                string                `xml:"xmlns,attr"`              // Default namespace
	XmlnsXsi             string                `xml:"xmlns:xsi,attr"`          // XML Schema namespace
	XsiSchemaLocation    string                `xml:"xsi:schemaLocation,attr"` // Schema location attribute
	ModelVersion         string                `xml:"modelVersion"`
	Packaging            string                `xml:"packaging"`
	GroupID              string                `xml:"groupId"`          // GroupID is optional if <parent> is specified
	ArtifactID           string                `xml:"artifactId"`       // ArtifactID is required
	Version              string                `xml:"version"`          // Version is required
	Parent               *Dependency           `xml:"parent,omitempty"` // Optional parent module
	Name                 string                `xml:"name,omitempty"`
	Description          string                `xml:"description,omitempty"`
	URL                  string                `xml:"url,omitempty"`
	Properties           *Properties           `xml:"properties,omitempty"`
	Dependencies         []Dependency          `xml:"dependencies>dependency"`
	DependencyManagement *DependencyManagement `xml:"dependencyManagement"` // parent poms can list default versions here
}

type DependencyManagement struct {
	Dependencies []Dependency `xml:"dependencies>dependency"`
}

type Dependency struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Version    string `xml:"version"`
	Type       string `xml:"type"`
	Scope      string `xml:"scope"`
}

type Properties struct {
	Properties []Property `xml:",any"` // Collection of key/value pairs
}

type Property struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

// GetProperty looks up a property by its XML local name.
func (p *POM) GetProperty(name string) (string, bool) {
	if p.Properties == nil {
		return "", false
	}
	for _, prop := range p.Properties.Properties {
		if prop.XMLName.Local == name {
			return prop.Value, true
		}
	}
	return "", false
}

// SetProperty sets or replaces a property, used both for <properties>
// entries and the synthetic project.version / project.parent.version
// properties repo.go derives during parent POM resolution.
func (p *POM) SetProperty(name, value string) {
	if p.Properties == nil {
		p.Properties = &Properties{}
	}
	for i := range p.Properties.Properties {
		if p.Properties.Properties[i].XMLName.Local == name {
			p.Properties.Properties[i].Value = value
			return
		}
	}
	p.Properties.Properties = append(p.Properties.Properties, Property{
		XMLName: xml.Name{Local: name},
		Value:   value,
	})
}

// Expand substitutes every ${property} placeholder in input using this
// POM's own properties, leaving unresolved placeholders untouched.
func (p *POM) Expand(input string) string {
	props := map[string]string{}
	if p.Properties != nil {
		for _, prop := range p.Properties.Properties {
			props[prop.XMLName.Local] = prop.Value
		}
	}
	return ResolveMavenFields(input, props)
}
