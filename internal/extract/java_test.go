package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for the Java extractor:
// - Extract imports and classify internal vs external packages
// - List top-level type names as exports (private/protected hidden)
// - Extract classes with superclass, interfaces, methods, and annotations
// - Never report top-level functions (methods live on classes)
// - Detect Spring mapping annotations as HTTP triggers
// - Detect picocli @Command as a CLI trigger
// - Produce record, interface, enum, and sealed-class contracts
// - Detect entry points in priority order (static main first)
// - Never detect barrels

func TestJavaExtractor_Imports(t *testing.T) {
	t.Parallel()

	source := `package com.acme.api;

import java.util.List;
import com.acme.model.User;
import org.springframework.web.bind.annotation.GetMapping;
import com.acme.util.*;
`
	tree := parseSource(t, "java", source)
	e := NewJavaExtractor()

	imports := e.Imports(tree.RootNode(), []byte(source))
	require.Len(t, imports, 4)

	assert.Equal(t, "java.util.List", imports[0].Module)
	assert.True(t, imports[0].IsExternal)

	// Qualified names default to external; resolution happens later
	// against the ingested file set.
	assert.True(t, imports[1].IsExternal)

	assert.True(t, imports[2].IsExternal)

	wildcard := imports[3]
	assert.Equal(t, "com.acme.util", wildcard.Module)
	assert.Equal(t, []string{"*"}, wildcard.Names)
}

func TestJavaExtractor_Exports(t *testing.T) {
	t.Parallel()

	source := `public class UserService {}

class PackagePrivate {}

private class Hidden {}

public interface Repository {}

public enum Status { ACTIVE, DISABLED }
`
	tree := parseSource(t, "java", source)
	e := NewJavaExtractor()

	exports := e.Exports(tree.RootNode(), []byte(source))
	assert.Equal(t, []string{"UserService", "PackagePrivate", "Repository", "Status"}, exports)
}

func TestJavaExtractor_ClassesAndSpringTriggers(t *testing.T) {
	t.Parallel()

	source := `package com.acme.api;

import org.springframework.web.bind.annotation.*;

@RestController
public class UserController extends BaseController {

    @GetMapping("/users")
    public List<User> listUsers() {
        return repo.findAll();
    }

    @PostMapping("/users")
    public User createUser(@RequestBody User user) {
        return repo.save(user);
    }

    @RequestMapping(value = "/users/bulk", method = RequestMethod.POST)
    public void bulkCreate(List<User> users) {}
}
`
	tree := parseSource(t, "java", source)
	e := NewJavaExtractor()

	classes := e.Classes(tree.RootNode(), []byte(source))
	require.Len(t, classes, 1)

	ctrl := classes[0]
	assert.Equal(t, "UserController", ctrl.Name)
	assert.Equal(t, []string{"BaseController"}, ctrl.Bases)
	assert.Contains(t, ctrl.Decorators, "RestController")

	require.Len(t, ctrl.Methods, 3)

	list := ctrl.Methods[0]
	assert.Equal(t, "listUsers", list.Name)
	assert.True(t, list.IsMethod)
	require.Len(t, list.Triggers, 1)
	assert.Equal(t, TriggerInfo{Kind: TriggerHTTP, Method: "GET", Route: "/users"}, list.Triggers[0])

	create := ctrl.Methods[1]
	require.Len(t, create.Triggers, 1)
	assert.Equal(t, "POST", create.Triggers[0].Method)

	bulk := ctrl.Methods[2]
	require.Len(t, bulk.Triggers, 1)
	assert.Equal(t, "POST", bulk.Triggers[0].Method)
	assert.Equal(t, "/users/bulk", bulk.Triggers[0].Route)

	// Methods never leak into the top-level function list.
	assert.Empty(t, e.Functions(tree.RootNode(), []byte(source)))
}

func TestJavaExtractor_PicocliCommand(t *testing.T) {
	t.Parallel()

	source := `import picocli.CommandLine;
import picocli.CommandLine.Command;

@Command(name = "sync")
public class SyncCommand implements Runnable {
    public void run() {}
}
`
	tree := parseSource(t, "java", source)
	e := NewJavaExtractor()

	assert.Equal(t, EntryCLI, e.DetectEntryPoint(tree.RootNode(), []byte(source), "SyncCommand.java"))
}

func TestJavaExtractor_DataContracts(t *testing.T) {
	t.Parallel()

	source := `public record Point(int x, int y) {}

public interface Shape {
    double area();
}

public enum Color { RED, GREEN }

public sealed class Result permits Ok, Err {}
`
	tree := parseSource(t, "java", source)
	e := NewJavaExtractor()

	contracts := e.DataContracts(tree.RootNode(), []byte(source))
	require.Len(t, contracts, 4)

	byName := make(map[string]DataContractInfo)
	for _, c := range contracts {
		byName[c.Name] = c
	}

	point := byName["Point"]
	assert.Equal(t, ContractRecord, point.Kind)
	require.Len(t, point.Fields, 2)
	assert.Equal(t, "x", point.Fields[0].Name)
	assert.Equal(t, "int", point.Fields[0].TypeAnnotation)

	assert.Equal(t, ContractInterface, byName["Shape"].Kind)

	color := byName["Color"]
	assert.Equal(t, ContractEnum, color.Kind)
	require.Len(t, color.Fields, 2)
	assert.Equal(t, "RED", color.Fields[0].Name)

	assert.Equal(t, ContractSealed, byName["Result"].Kind)
}

func TestJavaExtractor_EntryPointPriority(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		source   string
		filePath string
		want     string
	}{
		{
			name:     "static main",
			source:   "public class App {\n    public static void main(String[] args) {}\n}\n",
			filePath: "App.java",
			want:     EntryMain,
		},
		{
			name:     "spring controller",
			source:   "import org.springframework.web.bind.annotation.RestController;\n\n@RestController\npublic class Api {}\n",
			filePath: "Api.java",
			want:     EntryAPIRoute,
		},
		{
			name:     "conventional filename",
			source:   "public class Application {}\n",
			filePath: "Application.java",
			want:     EntryMain,
		},
		{
			name:     "android activity",
			source:   "public class LoginActivity extends AppCompatActivity {}\n",
			filePath: "LoginActivity.java",
			want:     EntryAndroidComponent,
		},
		{
			name:     "plain class",
			source:   "public class Helper {}\n",
			filePath: "Helper.java",
			want:     "",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			tree := parseSource(t, "java", tc.source)
			e := NewJavaExtractor()
			assert.Equal(t, tc.want, e.DetectEntryPoint(tree.RootNode(), []byte(tc.source), tc.filePath))
		})
	}
}

func TestJavaExtractor_NeverBarrel(t *testing.T) {
	t.Parallel()

	source := "import com.acme.model.User;\n"
	tree := parseSource(t, "java", source)
	e := NewJavaExtractor()
	assert.False(t, e.DetectBarrel(tree.RootNode(), []byte(source), "index.java"))
}
