package entity

// Pretrained BART checkpoint fine-tuned on MultiNLI
const (
	BartMNLIModelURL  = "https://huggingface.co/facebook/bart-large-mnli/resolve/main/model.safetensors"
	BartMNLIConfigURL = "https://huggingface.co/facebook/bart-large-mnli/resolve/main/config.json"
	BartMNLIVocabURL  = "https://huggingface.co/facebook/bart-large-mnli/resolve/main/vocab.json"
	BartMNLIMergesURL = "https://huggingface.co/facebook/bart-large-mnli/resolve/main/merges.txt"
)

var (
	BartMNLIModelResource  = RemoteResource("bart-large-mnli/model", BartMNLIModelURL)
	BartMNLIConfigResource = RemoteResource("bart-large-mnli/config", BartMNLIConfigURL)
	BartMNLIVocabResource  = RemoteResource("bart-large-mnli/vocab", BartMNLIVocabURL)
	BartMNLIMergesResource = RemoteResource("bart-large-mnli/merges", BartMNLIMergesURL)
)
