package serialization

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type userProfile struct {
	Name string
}

type chatMessage struct {
	Text string
}

type mediaPhoto struct {
	URL string
}

var (
	userProfileType = reflect.TypeOf(userProfile{})
	chatMessageType = reflect.TypeOf(chatMessage{})
	mediaPhotoType  = reflect.TypeOf(mediaPhoto{})
)

func rootModule() *StaticModule {
	return &StaticModule{
		Entries: []TypeEntry{{
			Type:      userProfileType,
			ClassName: "UserProfile",
			Decode: func(data any) (any, error) {
				record, ok := data.(map[string]any)
				if !ok {
					return nil, fmt.Errorf("expected a record, got %T", data)
				}
				name, err := DecodeString(record, "name")
				if err != nil {
					return nil, err
				}
				return userProfile{Name: name}, nil
			},
			Table: &TableDefinition{
				Name:    "user_profile",
				Columns: []ColumnDefinition{{Name: "name", Type: "text"}},
			},
		}},
	}
}

func chatModule() *StaticModule {
	return &StaticModule{
		ModuleName: "chat",
		Entries: []TypeEntry{{
			Type:      chatMessageType,
			ClassName: "ChatMessage",
			Decode: func(data any) (any, error) {
				record, ok := data.(map[string]any)
				if !ok {
					return nil, fmt.Errorf("expected a record, got %T", data)
				}
				text, err := DecodeString(record, "text")
				if err != nil {
					return nil, err
				}
				return chatMessage{Text: text}, nil
			},
			Table: &TableDefinition{Name: "chat_message"},
		}},
	}
}

func mediaModule() *StaticModule {
	return &StaticModule{
		ModuleName: "chat.media",
		Entries: []TypeEntry{{
			Type:      mediaPhotoType,
			ClassName: "MediaPhoto",
			Decode: func(data any) (any, error) {
				record, ok := data.(map[string]any)
				if !ok {
					return nil, fmt.Errorf("expected a record, got %T", data)
				}
				url, err := DecodeString(record, "url")
				if err != nil {
					return nil, err
				}
				return mediaPhoto{URL: url}, nil
			},
		}},
	}
}

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	registry, err := NewRegistry(rootModule(), chatModule(), mediaModule())
	require.NoError(t, err)
	return registry
}

func TestNewRegistry(t *testing.T) {
	t.Run("root must have an empty namespace", func(t *testing.T) {
		_, err := NewRegistry(chatModule())
		assert.Error(t, err)
	})

	t.Run("modules need unique non-empty namespaces", func(t *testing.T) {
		_, err := NewRegistry(rootModule(), chatModule(), chatModule())
		assert.Error(t, err)

		_, err = NewRegistry(rootModule(), &StaticModule{})
		assert.Error(t, err)
	})
}

func TestDeserialize(t *testing.T) {
	registry := newTestRegistry(t)

	t.Run("module owned type", func(t *testing.T) {
		v, err := registry.Deserialize(map[string]any{"text": "hi"}, chatMessageType)
		require.NoError(t, err)
		assert.Equal(t, chatMessage{Text: "hi"}, v)
	})

	t.Run("root owned type", func(t *testing.T) {
		v, err := registry.Deserialize(map[string]any{"name": "Ada"}, userProfileType)
		require.NoError(t, err)
		assert.Equal(t, userProfile{Name: "Ada"}, v)
	})

	t.Run("unknown type fails with type not found", func(t *testing.T) {
		type orphan struct{}
		_, err := registry.Deserialize(map[string]any{}, reflect.TypeOf(orphan{}))

		var notFound *TypeNotFoundError
		require.ErrorAs(t, err, &notFound)
	})

	t.Run("set of scalars is handled by the registry itself", func(t *testing.T) {
		v, err := registry.Deserialize([]any{"a", "b", "a"}, reflect.TypeOf(map[string]struct{}{}))
		require.NoError(t, err)
		assert.Equal(t, map[string]struct{}{"a": {}, "b": {}}, v)
	})

	t.Run("list of scalars is handled by the registry itself", func(t *testing.T) {
		v, err := registry.Deserialize([]any{float64(1), float64(2)}, reflect.TypeOf([]int{}))
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2}, v)
	})

	t.Run("module errors propagate immediately", func(t *testing.T) {
		_, err := registry.Deserialize("not a record", chatMessageType)
		require.Error(t, err)
		var notFound *TypeNotFoundError
		assert.False(t, errors.As(err, &notFound))
	})
}

// countingModule records how often its lookups run and claims a single type
type countingModule struct {
	name  string
	owns  reflect.Type
	calls int
}

func (m *countingModule) Name() string { return m.name }

func (m *countingModule) Deserialize(data any, t reflect.Type) (any, bool, error) {
	m.calls++
	if t == m.owns {
		return m.name, true, nil
	}
	return nil, false, nil
}

func (m *countingModule) DeserializeByClassName(string, map[string]any) (any, bool, error) {
	return nil, false, nil
}

func (m *countingModule) ClassNameForObject(any) (string, bool) { return "", false }

func (m *countingModule) TableForType(reflect.Type) (*TableDefinition, bool) { return nil, false }

func (m *countingModule) TableDefinitions() []TableDefinition { return nil }

func TestDeserializeTriesModulesInOrder(t *testing.T) {
	modules := make([]*countingModule, 5)
	protocols := make([]ModuleProtocol, 5)
	for i := range modules {
		modules[i] = &countingModule{name: fmt.Sprintf("mod%d", i)}
		protocols[i] = modules[i]
	}
	modules[2].owns = chatMessageType

	registry, err := NewRegistry(&StaticModule{}, protocols...)
	require.NoError(t, err)

	v, err := registry.Deserialize(map[string]any{}, chatMessageType)
	require.NoError(t, err)
	assert.Equal(t, "mod2", v)

	assert.Equal(t, 1, modules[0].calls)
	assert.Equal(t, 1, modules[1].calls)
	assert.Equal(t, 1, modules[2].calls)
	assert.Equal(t, 0, modules[3].calls)
	assert.Equal(t, 0, modules[4].calls)
}

func TestDeserializeByClassName(t *testing.T) {
	registry := newTestRegistry(t)

	t.Run("module prefix is stripped", func(t *testing.T) {
		v, err := registry.DeserializeByClassName(map[string]any{
			ClassNameField: "chat.ChatMessage",
			"text":         "hi",
		})
		require.NoError(t, err)
		assert.Equal(t, chatMessage{Text: "hi"}, v)
	})

	t.Run("longest module prefix wins", func(t *testing.T) {
		v, err := registry.DeserializeByClassName(map[string]any{
			ClassNameField: "chat.media.MediaPhoto",
			"url":          "https://example.com/p.jpg",
		})
		require.NoError(t, err)
		assert.Equal(t, mediaPhoto{URL: "https://example.com/p.jpg"}, v)
	})

	t.Run("unprefixed names belong to the root module", func(t *testing.T) {
		v, err := registry.DeserializeByClassName(map[string]any{
			ClassNameField: "UserProfile",
			"name":         "Ada",
		})
		require.NoError(t, err)
		assert.Equal(t, userProfile{Name: "Ada"}, v)
	})

	t.Run("unknown class name fails with type not found", func(t *testing.T) {
		_, err := registry.DeserializeByClassName(map[string]any{ClassNameField: "chat.Nothing"})

		var notFound *TypeNotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "chat.Nothing", notFound.TypeName)
	})

	t.Run("missing class name field", func(t *testing.T) {
		_, err := registry.DeserializeByClassName(map[string]any{"text": "hi"})
		require.Error(t, err)
	})

	t.Run("input record is not mutated", func(t *testing.T) {
		record := map[string]any{ClassNameField: "chat.ChatMessage", "text": "hi"}
		_, err := registry.DeserializeByClassName(record)
		require.NoError(t, err)
		assert.Equal(t, "chat.ChatMessage", record[ClassNameField])
	})
}

func TestClassNameForObject(t *testing.T) {
	registry := newTestRegistry(t)

	t.Run("module classes carry the namespace prefix", func(t *testing.T) {
		name, ok := registry.ClassNameForObject(chatMessage{Text: "hi"})
		require.True(t, ok)
		assert.Equal(t, "chat.ChatMessage", name)
	})

	t.Run("root classes carry no prefix", func(t *testing.T) {
		name, ok := registry.ClassNameForObject(userProfile{Name: "Ada"})
		require.True(t, ok)
		assert.Equal(t, "UserProfile", name)
	})

	t.Run("unowned values are absent", func(t *testing.T) {
		_, ok := registry.ClassNameForObject(42)
		assert.False(t, ok)
	})
}

func TestRoundTrip(t *testing.T) {
	registry := newTestRegistry(t)

	value := chatMessage{Text: "round trip"}
	name, ok := registry.ClassNameForObject(value)
	require.True(t, ok)

	restored, err := registry.DeserializeByClassName(map[string]any{
		ClassNameField: name,
		"text":         value.Text,
	})
	require.NoError(t, err)
	assert.Equal(t, value, restored)
}

func TestTables(t *testing.T) {
	registry := newTestRegistry(t)

	t.Run("table for a database backed type", func(t *testing.T) {
		table, ok := registry.TableForType(chatMessageType)
		require.True(t, ok)
		assert.Equal(t, "chat_message", table.Name)
	})

	t.Run("no table for transport only types", func(t *testing.T) {
		_, ok := registry.TableForType(mediaPhotoType)
		assert.False(t, ok)
	})

	t.Run("all tables concatenate in order with root last", func(t *testing.T) {
		tables := registry.AllTableDefinitions()
		require.Len(t, tables, 2)
		assert.Equal(t, "chat_message", tables[0].Name)
		assert.Equal(t, "user_profile", tables[1].Name)
	})
}
