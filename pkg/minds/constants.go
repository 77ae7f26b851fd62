package minds

const (
	// DefaultBaseURL is the Minds cloud API.
	DefaultBaseURL = "https://mdb.ai/api"

	// DefaultCompletionsURL serves chat completions for minds hosted on DefaultBaseURL.
	DefaultCompletionsURL = "https://llm.mdb.ai/"

	// DefaultProject is the project minds live in unless WithProject says otherwise.
	DefaultProject = "mindsdb"

	// DefaultPromptTemplate is sent with a new mind when no template was given.
	DefaultPromptTemplate = "Use your database tools to answer the user's question: {{question}}"
)

const (
	promptTemplateKey   = "prompt_template"
	parametersKey       = "parameters"
	checkConnectionKey  = "check_connection"
	defaultCloudAPIHost = "mdb.ai"
)
