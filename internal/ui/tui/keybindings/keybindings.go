package keybindings

import tea "github.com/charmbracelet/bubbletea"

// Action represents a specific action that can be triggered by a key
type Action string

// Define all possible actions
const (
	// Global actions
	ActionQuit        Action = "quit"
	ActionToggleHelp  Action = "toggle_help"
	ActionLogout      Action = "logout"
	ActionToggleTheme Action = "toggle_theme"
	ActionBack        Action = "back" // General purpose "go back" or "cancel"

	// Navigation actions
	ActionMoveUp     Action = "move_up"
	ActionMoveDown   Action = "move_down"
	ActionPageUp     Action = "page_up"
	ActionPageDown   Action = "page_down"
	ActionMoveTop    Action = "move_top"
	ActionMoveBottom Action = "move_bottom"

	// Player actions
	ActionSelectModule   Action = "select_module"
	ActionPlayPause      Action = "play_pause"
	ActionSeekBackward   Action = "seek_backward"
	ActionSeekForward    Action = "seek_forward"
	ActionEnableSeek     Action = "enable_seek"
	ActionVolumeUp       Action = "volume_up"
	ActionVolumeDown     Action = "volume_down"
	ActionToggleMute     Action = "toggle_mute"
	ActionFullscreen     Action = "toggle_fullscreen"
	ActionNextModule     Action = "next_module"
	ActionPrevModule     Action = "prev_module"
	ActionToggleComplete Action = "toggle_complete"

	// Seek mode actions
	ActionSeekStepBack    Action = "seek_step_back"
	ActionSeekStepForward Action = "seek_step_forward"
	ActionSeekJumpBack    Action = "seek_jump_back"
	ActionSeekJumpForward Action = "seek_jump_forward"
	ActionSeekCommit      Action = "seek_commit"

	// Error view actions
	ActionRetry Action = "retry"

	// Search mode actions
	ActionEnableSearch   Action = "enable_search"
	ActionSearchComplete Action = "search_complete"
)

// ContextName represents a specific UI context in the application that has its own keybinds
type ContextName string

const (
	ContextGlobal     ContextName = "global"
	ContextPlayer     ContextName = "player"
	ContextSeekMode   ContextName = "seek_mode"
	ContextSearchMode ContextName = "search_mode"
	ContextError      ContextName = "error"
	ContextHelp       ContextName = "help"
)

var ContextBindings = map[ContextName][]Binding{
	ContextGlobal:     globalBindings,
	ContextPlayer:     playerBindings,
	ContextSeekMode:   seekModeBindings,
	ContextSearchMode: searchModeBindings,
	ContextError:      errorBindings,
	ContextHelp:       helpBindings,
}

// KeyMap stores the mappings from actions to key sequences for each context
type KeyMap struct {
	Primary   string
	Secondary string // Optional alternative key
	Help      string // Description for help screen
}

// Binding maps an action to its keys and help text
type Binding struct {
	Action Action
	KeyMap KeyMap
}

// navigationBindings contains general navigation bindings for consistent navigation across the app
var navigationBindings = []Binding{
	{
		Action: ActionMoveUp,
		KeyMap: KeyMap{
			Primary:   "up",
			Secondary: "k",
			Help:      "Move cursor up",
		},
	},
	{
		Action: ActionMoveDown,
		KeyMap: KeyMap{
			Primary:   "down",
			Secondary: "j",
			Help:      "Move cursor down",
		},
	},
	{
		Action: ActionPageUp,
		KeyMap: KeyMap{
			Primary: "pgup",
			Help:    "Move up one page",
		},
	},
	{
		Action: ActionPageDown,
		KeyMap: KeyMap{
			Primary: "pgdown",
			Help:    "Move down one page",
		},
	},
	{
		Action: ActionMoveTop,
		KeyMap: KeyMap{
			Primary: "home",
			Help:    "Move top of view",
		},
	},
	{
		Action: ActionMoveBottom,
		KeyMap: KeyMap{
			Primary: "end",
			Help:    "Move bottom of view",
		},
	},
}

// globalBindings contains key bindings that work across all views
var globalBindings = []Binding{
	{
		Action: ActionQuit,
		KeyMap: KeyMap{
			Primary: "ctrl+c",
			Help:    "Quit application",
		},
	},
	{
		Action: ActionToggleHelp,
		KeyMap: KeyMap{
			Primary: "ctrl+h",
			Help:    "Toggle help screen",
		},
	},
	{
		Action: ActionLogout,
		KeyMap: KeyMap{
			Primary: "ctrl+l",
			Help:    "Logout (clear token) and quit",
		},
	},
	{
		Action: ActionToggleTheme,
		KeyMap: KeyMap{
			Primary: "ctrl+t",
			Help:    "Switch between dark and light theme",
		},
	},
	{
		Action: ActionBack,
		KeyMap: KeyMap{
			Primary: "esc",
			Help:    "Go back/cancel current action",
		},
	},
}

// helpBindings contains key bindings specific to the help view
var helpBindings = withNavigation([]Binding{})

// errorBindings contains key bindings specific to the error view
var errorBindings = []Binding{
	{
		Action: ActionRetry,
		KeyMap: KeyMap{
			Primary: "r",
			Help:    "Retry loading the protocol",
		},
	},
}

// playerBindings contains key bindings specific to the player view.  Navigation moves the sidebar cursor.
var playerBindings = withNavigation([]Binding{
	{
		Action: ActionSelectModule,
		KeyMap: KeyMap{
			Primary: "enter",
			Help:    "Play module under cursor",
		},
	},
	{
		Action: ActionPlayPause,
		KeyMap: KeyMap{
			Primary: " ",
			Help:    "Play/pause",
		},
	},
	{
		Action: ActionSeekBackward,
		KeyMap: KeyMap{
			Primary:   "left",
			Secondary: "h",
			Help:      "Back 10 seconds",
		},
	},
	{
		Action: ActionSeekForward,
		KeyMap: KeyMap{
			Primary:   "right",
			Secondary: "l",
			Help:      "Forward 10 seconds",
		},
	},
	{
		Action: ActionEnableSeek,
		KeyMap: KeyMap{
			Primary: "s",
			Help:    "Scrub the progress bar",
		},
	},
	{
		Action: ActionVolumeUp,
		KeyMap: KeyMap{
			Primary:   "+",
			Secondary: "=",
			Help:      "Volume up",
		},
	},
	{
		Action: ActionVolumeDown,
		KeyMap: KeyMap{
			Primary: "-",
			Help:    "Volume down",
		},
	},
	{
		Action: ActionToggleMute,
		KeyMap: KeyMap{
			Primary: "m",
			Help:    "Mute/unmute",
		},
	},
	{
		Action: ActionFullscreen,
		KeyMap: KeyMap{
			Primary: "f",
			Help:    "Toggle fullscreen",
		},
	},
	{
		Action: ActionNextModule,
		KeyMap: KeyMap{
			Primary: "n",
			Help:    "Next module",
		},
	},
	{
		Action: ActionPrevModule,
		KeyMap: KeyMap{
			Primary: "p",
			Help:    "Previous module",
		},
	},
	{
		Action: ActionToggleComplete,
		KeyMap: KeyMap{
			Primary: "c",
			Help:    "Mark module complete/incomplete",
		},
	},
	{
		Action: ActionEnableSearch,
		KeyMap: KeyMap{
			Primary:   "/",
			Secondary: "ctrl+f",
			Help:      "Search modules",
		},
	},
})

// seekModeBindings contains key bindings for when the progress bar is being scrubbed
var seekModeBindings = []Binding{
	{
		Action: ActionSeekStepBack,
		KeyMap: KeyMap{
			Primary:   "left",
			Secondary: "h",
			Help:      "Move back 1%",
		},
	},
	{
		Action: ActionSeekStepForward,
		KeyMap: KeyMap{
			Primary:   "right",
			Secondary: "l",
			Help:      "Move forward 1%",
		},
	},
	{
		Action: ActionSeekJumpBack,
		KeyMap: KeyMap{
			Primary:   "shift+left",
			Secondary: "H",
			Help:      "Move back 10%",
		},
	},
	{
		Action: ActionSeekJumpForward,
		KeyMap: KeyMap{
			Primary:   "shift+right",
			Secondary: "L",
			Help:      "Move forward 10%",
		},
	},
	{
		Action: ActionSeekCommit,
		KeyMap: KeyMap{
			Primary:   "enter",
			Secondary: "s",
			Help:      "Jump to the chosen position",
		},
	},
	{
		Action: ActionBack,
		KeyMap: KeyMap{
			Primary: "esc",
			Help:    "Leave without seeking",
		},
	},
}

// searchModeBindings contains key bindings specific for when search mode is active
var searchModeBindings = []Binding{
	{
		Action: ActionBack,
		KeyMap: KeyMap{
			Primary:   "esc",
			Secondary: "ctrl+f",
			Help:      "Exit search mode and remove the filter",
		},
	},
	{
		Action: ActionSearchComplete,
		KeyMap: KeyMap{
			Primary: "enter",
			Help:    "Apply the search filter and return control to the module list",
		},
	},
}

// GetActionKey returns the primary key for an action
func GetActionKey(action Action, bindings []Binding) string {
	for _, binding := range bindings {
		if binding.Action == action {
			return binding.KeyMap.Primary
		}
	}
	return ""
}

// GetActionByKey returns just the action for a given key, or an empty Action if not found
func GetActionByKey(keyMsg tea.KeyMsg, name ContextName) Action {
	if bindings, exists := ContextBindings[name]; exists {
		key := keyMsg.String()
		for _, binding := range bindings {
			if binding.KeyMap.Primary == key || binding.KeyMap.Secondary == key {
				return binding.Action
			}
		}
	}
	return ""
}

// DisplayKey renders a key for on-screen hints
func DisplayKey(key string) string {
	if key == " " {
		return "space"
	}
	return key
}

// withNavigation is a helper function to include navigation bindings in other binding sets
func withNavigation(bindings []Binding) []Binding {
	return append(append([]Binding{}, navigationBindings...), bindings...)
}
