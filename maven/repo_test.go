package maven

import (
	"encoding/xml"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper function to create Properties from a map
func makeProperties(m map[string]string) *Properties {
	props := &Properties{Properties: []Property{}}
	for k, v := range m {
		props.Properties = append(props.Properties, Property{
			XMLName: xml.Name{Local: k},
			Value:   v,
		})
	}
	return props
}

func TestResolveMavenFields(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		properties map[string]string
		expected   string
	}{
		{
			name:       "NoPlaceholders",
			input:      "plain-text",
			properties: map[string]string{},
			expected:   "plain-text",
		},
		{
			name:  "SinglePlaceholder",
			input: "${version}",
			properties: map[string]string{
				"version": "1.0.0",
			},
			expected: "1.0.0",
		},
		{
			name:  "SinglePlaceholderWithDots",
			input: "${project.parent.version}",
			properties: map[string]string{
				"project.parent.version": "1.0.0",
			},
			expected: "1.0.0",
		},
		{
			name:  "MultiplePlaceholders",
			input: "${groupId}.${artifactId}:${version}",
			properties: map[string]string{
				"groupId":    "com.example",
				"artifactId": "example-project",
				"version":    "1.0.0",
			},
			expected: "com.example.example-project:1.0.0",
		},
		{
			name:  "UnknownPlaceholder",
			input: "${unknown}",
			properties: map[string]string{
				"version": "1.0.0",
			},
			expected: "${unknown}",
		},
		{
			name:  "MixedKnownAndUnknownPlaceholders",
			input: "${groupId}.${unknown}:${version}",
			properties: map[string]string{
				"groupId": "com.example",
				"version": "1.0.0",
			},
			expected: "com.example.${unknown}:1.0.0",
		},
		{
			name:       "EmptyPropertiesMap",
			input:      "${groupId}.${artifactId}:${version}",
			properties: map[string]string{},
			expected:   "${groupId}.${artifactId}:${version}",
		},
		{
			name:  "NestedPlaceholderIgnored",
			input: "${${nested}}",
			properties: map[string]string{
				"nested": "key",
				"key":    "value",
			},
			expected: "${key}",
		},
		{
			name:  "PlaceholderWithSpecialCharacters",
			input: "${weird-key_123}",
			properties: map[string]string{
				"weird-key_123": "special-value",
			},
			expected: "special-value",
		},
		{
			name:  "PlaceholderWithNoBraces",
			input: "normal-text",
			properties: map[string]string{
				"key": "value",
			},
			expected: "normal-text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ResolveMavenFields(tt.input, tt.properties)
			if result != tt.expected {
				t.Errorf("expected: %s, got: %s", tt.expected, result)
			}
		})
	}
}

func TestOpenLocalRepository(t *testing.T) {
	repo := OpenLocalRepository()
	assert.NotNil(t, repo)
	assert.Equal(t, "~/.jbc/repository", repo.baseDir)
	assert.NotNil(t, repo.remotes)
	assert.Contains(t, repo.remotes, MAVEN_CENTRAL_URL)
	assert.NotNil(t, repo.poms)
}

func TestGAV(t *testing.T) {
	gav := GAV("com.example", "my-lib", "1.0.0")
	assert.Equal(t, "com.example:my-lib:1.0.0", gav)
}

func TestJarFile(t *testing.T) {
	jarName := jarFile("my-lib", "1.0.0")
	assert.Equal(t, "my-lib-1.0.0.jar", jarName)
}

func TestPomFile(t *testing.T) {
	pomName := pomFile("my-lib", "1.0.0")
	assert.Equal(t, "my-lib-1.0.0.pom", pomName)
}

func TestArtifactDir(t *testing.T) {
	repo := &LocalRepository{baseDir: "/tmp/repo"}

	// Test simple case
	dir := repo.artifactDir("com.example", "my-lib", "1.0.0")
	expected := filepath.Join("/tmp/repo", "com", "example", "my-lib", "1.0.0")
	assert.Equal(t, expected, dir)

	// Test with nested group
	dir = repo.artifactDir("org.apache.commons", "commons-lang3", "3.12.0")
	expected = filepath.Join("/tmp/repo", "org", "apache", "commons", "commons-lang3", "3.12.0")
	assert.Equal(t, expected, dir)
}

func TestFileExists(t *testing.T) {
	tempDir := t.TempDir()

	// Test existing file
	existingFile := filepath.Join(tempDir, "exists.txt")
	require.NoError(t, os.WriteFile(existingFile, []byte("test"), 0644))
	assert.True(t, fileExists(existingFile))

	// Test non-existent file
	assert.False(t, fileExists(filepath.Join(tempDir, "not-exists.txt")))

	// Directories are not asserted here: fileExists only stats the
	// path, so it also returns true for a directory.
}

func TestCopyFile(t *testing.T) {
	tempDir := t.TempDir()

	src := filepath.Join(tempDir, "source.txt")
	dst := filepath.Join(tempDir, "dest.txt")
	content := []byte("test content")

	require.NoError(t, os.WriteFile(src, content, 0644))

	err := copyFile(src, dst)
	assert.NoError(t, err)

	// Verify content
	dstContent, err := os.ReadFile(dst)
	assert.NoError(t, err)
	assert.Equal(t, content, dstContent)

	// Test error cases
	err = copyFile("/non/existent/file", dst)
	assert.Error(t, err)
}

func TestPOMExpand(t *testing.T) {
	pom := &POM{
		XMLName:     xml.Name{Local: "project"},
		GroupID:     "com.example",
		ArtifactID:  "my-project",
		Version:     "1.0.0",
		Name:        "${project.artifactId}",
		Description: "Project ${project.version}",
		Properties: makeProperties(map[string]string{
			"java.version": "11",
			"encoding":     "UTF-8",
		}),
	}

	// Expand resolves the POM's own properties and leaves unknown
	// placeholders untouched.
	assert.Equal(t, "Java 11 (UTF-8)", pom.Expand("Java ${java.version} (${encoding})"))
	assert.Equal(t, "Project ${project.version}", pom.Expand(pom.Description))

	assert.Equal(t, "com.example", pom.GroupID)
	assert.Equal(t, "my-project", pom.ArtifactID)
	assert.Equal(t, "1.0.0", pom.Version)

	// Test property access
	prop, found := pom.GetProperty("java.version")
	assert.True(t, found)
	assert.Equal(t, "11", prop)
}

func TestPOMGetProperty(t *testing.T) {
	pom := &POM{
		GroupID:    "com.example",
		ArtifactID: "my-project",
		Version:    "1.0.0",
		Properties: makeProperties(map[string]string{
			"custom.property": "value",
		}),
	}

	// Test getting custom property
	prop, found := pom.GetProperty("custom.property")
	assert.True(t, found)
	assert.Equal(t, "value", prop)

	// Test non-existent property
	prop, found = pom.GetProperty("non.existent")
	assert.False(t, found)
	assert.Empty(t, prop)
}

func TestPOMSetProperty(t *testing.T) {
	pom := &POM{}

	// Set new property
	pom.SetProperty("key1", "value1")
	prop, found := pom.GetProperty("key1")
	assert.True(t, found)
	assert.Equal(t, "value1", prop)

	// Update existing property
	pom.SetProperty("key1", "value2")
	prop, found = pom.GetProperty("key1")
	assert.True(t, found)
	assert.Equal(t, "value2", prop)

	// Set multiple properties
	pom.SetProperty("key2", "value2")
	pom.SetProperty("key3", "value3")
	assert.Len(t, pom.Properties.Properties, 3)
}

func TestPOMUnmarshal(t *testing.T) {
	pomXML := `<?xml version="1.0" encoding="UTF-8"?>
<project>
    <modelVersion>4.0.0</modelVersion>
    <groupId>com.example</groupId>
    <artifactId>test-lib</artifactId>
    <version>1.0.0</version>
    <properties>
        <java.version>11</java.version>
        <maven.compiler.source>11</maven.compiler.source>
    </properties>
    <dependencies>
        <dependency>
            <groupId>junit</groupId>
            <artifactId>junit</artifactId>
            <version>4.13.2</version>
            <scope>test</scope>
        </dependency>
    </dependencies>
</project>`

	var pom POM
	err := xml.Unmarshal([]byte(pomXML), &pom)
	assert.NoError(t, err)

	assert.Equal(t, "com.example", pom.GroupID)
	assert.Equal(t, "test-lib", pom.ArtifactID)
	assert.Equal(t, "1.0.0", pom.Version)

	// Check properties
	assert.NotNil(t, pom.Properties)
	prop, found := pom.GetProperty("java.version")
	assert.True(t, found)
	assert.Equal(t, "11", prop)

	// Check dependencies
	assert.Len(t, pom.Dependencies, 1)
	dep := pom.Dependencies[0]
	assert.Equal(t, "junit", dep.GroupID)
	assert.Equal(t, "junit", dep.ArtifactID)
	assert.Equal(t, "4.13.2", dep.Version)
	assert.Equal(t, "test", dep.Scope)
}

func TestPOMWithParent(t *testing.T) {
	pomXML := `<?xml version="1.0" encoding="UTF-8"?>
<project>
    <modelVersion>4.0.0</modelVersion>
    <parent>
        <groupId>com.example</groupId>
        <artifactId>parent-pom</artifactId>
        <version>2.0.0</version>
    </parent>
    <artifactId>child</artifactId>
    <version>1.0.0</version>
</project>`

	var pom POM
	err := xml.Unmarshal([]byte(pomXML), &pom)
	assert.NoError(t, err)

	assert.NotNil(t, pom.Parent)
	assert.Equal(t, "com.example", pom.Parent.GroupID)
	assert.Equal(t, "parent-pom", pom.Parent.ArtifactID)
	assert.Equal(t, "2.0.0", pom.Parent.Version)

	assert.Empty(t, pom.GroupID) // Should be inherited from parent
	assert.Equal(t, "child", pom.ArtifactID)
	assert.Equal(t, "1.0.0", pom.Version)
}

func TestPOMWithDependencyManagement(t *testing.T) {
	pomXML := `<?xml version="1.0" encoding="UTF-8"?>
<project>
    <modelVersion>4.0.0</modelVersion>
    <groupId>com.example</groupId>
    <artifactId>test</artifactId>
    <version>1.0.0</version>
    <dependencyManagement>
        <dependencies>
            <dependency>
                <groupId>org.springframework</groupId>
                <artifactId>spring-core</artifactId>
                <version>5.3.0</version>
            </dependency>
        </dependencies>
    </dependencyManagement>
    <dependencies>
        <dependency>
            <groupId>org.springframework</groupId>
            <artifactId>spring-core</artifactId>
        </dependency>
    </dependencies>
</project>`

	var pom POM
	err := xml.Unmarshal([]byte(pomXML), &pom)
	assert.NoError(t, err)

	// Verify dependency management was parsed
	assert.NotNil(t, pom.DependencyManagement)
	assert.Len(t, pom.DependencyManagement.Dependencies, 1)
	assert.Equal(t, "5.3.0", pom.DependencyManagement.Dependencies[0].Version)

	// Verify regular dependency without version
	assert.Len(t, pom.Dependencies, 1)
	assert.Empty(t, pom.Dependencies[0].Version)
}

func TestGetPOM(t *testing.T) {
	tempDir := t.TempDir()

	// Create repository with custom base dir
	repo := &LocalRepository{
		baseDir: tempDir,
		remotes: []string{MAVEN_CENTRAL_URL},
		poms:    make(map[string]*POM),
	}

	// Create a test POM file
	pomDir := filepath.Join(tempDir, "com", "example", "test-lib", "1.0.0")
	require.NoError(t, os.MkdirAll(pomDir, 0755))

	pomContent := `<?xml version="1.0" encoding="UTF-8"?>
<project>
    <modelVersion>4.0.0</modelVersion>
    <groupId>com.example</groupId>
    <artifactId>test-lib</artifactId>
    <version>1.0.0</version>
</project>`

	pomFile := filepath.Join(pomDir, "test-lib-1.0.0.pom")
	require.NoError(t, os.WriteFile(pomFile, []byte(pomContent), 0644))

	pom, err := repo.GetPOM("com.example", "test-lib", "1.0.0")
	assert.NoError(t, err)
	assert.NotNil(t, pom)
	assert.Equal(t, "com.example", pom.GroupID)
	assert.Equal(t, "test-lib", pom.ArtifactID)
	assert.Equal(t, "1.0.0", pom.Version)

	// Test caching
	pom2, err := repo.GetPOM("com.example", "test-lib", "1.0.0")
	assert.NoError(t, err)
	assert.Same(t, pom, pom2) // Should be same instance from cache

	// Test non-existent POM
	_, err = repo.GetPOM("com.nonexistent", "lib", "1.0.0")
	assert.Error(t, err)
}
