package annotate

// Key names a recognized annotation option. The string form doubles as the
// environment variable name used to persist the option.
type Key string

// Group identifies the decoding rule applied to a Key.
type Group int

const (
	// GroupUnknown is reported for keys outside the registry.
	GroupUnknown Group = iota
	// GroupPosition keys hold "before"/"after" placement hints.
	GroupPosition
	// GroupFlag keys hold booleans.
	GroupFlag
	// GroupPath keys hold comma separated path lists.
	GroupPath
	// GroupOther keys hold free-form strings.
	GroupOther
)

func (g Group) String() string {
	switch g {
	case GroupPosition:
		return "position"
	case GroupFlag:
		return "flag"
	case GroupPath:
		return "path"
	case GroupOther:
		return "other"
	default:
		return "unknown"
	}
}

const (
	PositionInRoutes     Key = "position_in_routes"
	PositionInClass      Key = "position_in_class"
	PositionInTest       Key = "position_in_test"
	PositionInFixture    Key = "position_in_fixture"
	PositionInFactory    Key = "position_in_factory"
	Position             Key = "position"
	PositionInSerializer Key = "position_in_serializer"
)

const (
	ShowIndexes             Key = "show_indexes"
	SimpleIndexes           Key = "simple_indexes"
	IncludeVersion          Key = "include_version"
	ExcludeTests            Key = "exclude_tests"
	ExcludeFixtures         Key = "exclude_fixtures"
	ExcludeFactories        Key = "exclude_factories"
	IgnoreModelSubDir       Key = "ignore_model_sub_dir"
	FormatBare              Key = "format_bare"
	FormatRdoc              Key = "format_rdoc"
	FormatMarkdown          Key = "format_markdown"
	Sort                    Key = "sort"
	Force                   Key = "force"
	Frozen                  Key = "frozen"
	TraceErrors             Key = "trace"
	Timestamp               Key = "timestamp"
	ExcludeSerializers      Key = "exclude_serializers"
	ClassifiedSort          Key = "classified_sort"
	ShowForeignKeys         Key = "show_foreign_keys"
	ShowCompleteForeignKeys Key = "show_complete_foreign_keys"
	ExcludeScaffolds        Key = "exclude_scaffolds"
	ExcludeControllers      Key = "exclude_controllers"
	ExcludeHelpers          Key = "exclude_helpers"
	ExcludeSTISubclasses    Key = "exclude_sti_subclasses"
	IgnoreUnknownModels     Key = "ignore_unknown_models"
	WithComment             Key = "with_comment"
)

const (
	Require  Key = "require"
	ModelDir Key = "model_dir"
	RootDir  Key = "root_dir"
)

const (
	AdditionalFilePatterns Key = "additional_file_patterns"
	IgnoreColumns          Key = "ignore_columns"
	SkipOnDBMigrate        Key = "skip_on_db_migrate"
	WrapperOpen            Key = "wrapper_open"
	WrapperClose           Key = "wrapper_close"
	Wrapper                Key = "wrapper"
	Routes                 Key = "routes"
	Models                 Key = "models"
	HideLimitColumnTypes   Key = "hide_limit_column_types"
	HideDefaultColumnTypes Key = "hide_default_column_types"
	IgnoreRoutes           Key = "ignore_routes"
	ActiveAdmin            Key = "active_admin"
)

var (
	positionOptions = []Key{
		PositionInRoutes, PositionInClass, PositionInTest,
		PositionInFixture, PositionInFactory, Position,
		PositionInSerializer,
	}
	flagOptions = []Key{
		ShowIndexes, SimpleIndexes, IncludeVersion, ExcludeTests,
		ExcludeFixtures, ExcludeFactories, IgnoreModelSubDir,
		FormatBare, FormatRdoc, FormatMarkdown, Sort, Force, Frozen,
		TraceErrors, Timestamp, ExcludeSerializers, ClassifiedSort,
		ShowForeignKeys, ShowCompleteForeignKeys,
		ExcludeScaffolds, ExcludeControllers, ExcludeHelpers,
		ExcludeSTISubclasses, IgnoreUnknownModels, WithComment,
	}
	pathOptions = []Key{
		Require, ModelDir, RootDir,
	}
	otherOptions = []Key{
		AdditionalFilePatterns, IgnoreColumns, SkipOnDBMigrate, WrapperOpen, WrapperClose,
		Wrapper, Routes, Models, HideLimitColumnTypes, HideDefaultColumnTypes,
		IgnoreRoutes, ActiveAdmin,
	}

	keyGroups = indexGroups()
)

// PositionOptions returns the position keys in declaration order.
func PositionOptions() []Key { return cloneKeys(positionOptions) }

// FlagOptions returns the boolean keys in declaration order.
func FlagOptions() []Key { return cloneKeys(flagOptions) }

// PathOptions returns the path list keys in declaration order.
func PathOptions() []Key { return cloneKeys(pathOptions) }

// OtherOptions returns the free-form keys in declaration order.
func OtherOptions() []Key { return cloneKeys(otherOptions) }

// AllOptions returns every recognized key: position, flag, path and other
// groups concatenated in that order.
func AllOptions() []Key {
	out := make([]Key, 0, len(keyGroups))
	out = append(out, positionOptions...)
	out = append(out, flagOptions...)
	out = append(out, pathOptions...)
	out = append(out, otherOptions...)
	return out
}

// GroupOf reports the group a key belongs to.
func GroupOf(key Key) (Group, bool) {
	group, ok := keyGroups[key]
	return group, ok
}

// IsOption reports whether name is a recognized option key.
func IsOption(name string) bool {
	_, ok := keyGroups[Key(name)]
	return ok
}

func indexGroups() map[Key]Group {
	index := make(map[Key]Group)
	register := func(group Group, keys []Key) {
		for _, key := range keys {
			if _, exists := index[key]; exists {
				panic("annotate: option " + string(key) + " registered twice")
			}
			index[key] = group
		}
	}
	register(GroupPosition, positionOptions)
	register(GroupFlag, flagOptions)
	register(GroupPath, pathOptions)
	register(GroupOther, otherOptions)
	return index
}

func cloneKeys(keys []Key) []Key {
	out := make([]Key, len(keys))
	copy(out, keys)
	return out
}
