package main

import (
	"fmt"
	"io"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"

	"github.com/modalityml/omnitok"
	"github.com/modalityml/omnitok/codecs"
	"github.com/modalityml/omnitok/options"
	"github.com/modalityml/omnitok/prompt"
	"github.com/modalityml/omnitok/util"
	"github.com/modalityml/omnitok/util/imageutil"
	"github.com/modalityml/omnitok/vocab"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var backend string
var sharedLibraryPath string
var tokenizerPath string
var imageModelPath string
var speechModelPath string
var vocabPath string
var inputPath string
var outputPath string
var sampleID string
var authToken string

var backendFlags = []cli.Flag{
	&cli.StringFlag{
		Name:        "backend",
		Usage:       "Inference backend, ORT or GO",
		Aliases:     []string{"b"},
		Destination: &backend,
		Value:       "ORT",
	},
	&cli.StringFlag{
		Name:        "onnxruntimeSharedLibrary",
		Usage:       "Path to onnxruntime.so (ORT backend only)",
		Aliases:     []string{"s"},
		Destination: &sharedLibraryPath,
	},
	&cli.StringFlag{
		Name:        "tokenizer",
		Usage:       "Path to the text tokenizer.json",
		Destination: &tokenizerPath,
		Required:    true,
	},
	&cli.StringFlag{
		Name:        "imageModel",
		Usage:       "Path to the image codec bundle directory",
		Destination: &imageModelPath,
		Required:    true,
	},
	&cli.StringFlag{
		Name:        "speechModel",
		Usage:       "Path to the speech codec bundle directory",
		Destination: &speechModelPath,
		Required:    true,
	},
	&cli.StringFlag{
		Name:        "vocab",
		Usage:       "Path to the vocabulary layout json. Omit for the default layout.",
		Destination: &vocabPath,
	},
}

var encodeCommand = &cli.Command{
	Name:  "encode",
	Usage: "Tokenize a multimodal conversation into a flat id sequence",
	Description: `Encode expects a conversation in json format, read from --input or from stdin:
				{"mode": "standard", "messages": [{"role": "user", "content": [{"type": "text", "text": "describe this"}, {"type": "image", "path": "cat.png"}]}]}
				Content parts of type image and speech name a png/jpeg or mono wav file by path.
				The token sequence is written to --output or stdout as a json array.`,
	Flags: append([]cli.Flag{
		&cli.StringFlag{
			Name:        "input",
			Usage:       "Path to the conversation json. If omitted, stdin is read.",
			Aliases:     []string{"i"},
			Destination: &inputPath,
		},
		&cli.StringFlag{
			Name:        "output",
			Usage:       "Path for the token sequence json. If omitted, stdout is used.",
			Aliases:     []string{"o"},
			Destination: &outputPath,
		},
	}, backendFlags...),
	Action: func(ctx *cli.Context) error {
		tokenizer, cleanup, err := loadTokenizer()
		if err != nil {
			return err
		}
		defer cleanup()

		conv, err := readConversation()
		if err != nil {
			return err
		}
		ids, err := tokenizer.Encode(conv)
		if err != nil {
			return err
		}
		out, err := json.Marshal(ids)
		if err != nil {
			return err
		}
		if outputPath == "" {
			_, err = fmt.Println(string(out))
			return err
		}
		return util.WriteFileBytes(outputPath, out)
	},
}

var decodeCommand = &cli.Command{
	Name:  "decode",
	Usage: "Detokenize a generated id sequence into text, image and speech files",
	Description: `Decode expects a json array of token ids, read from --input or from stdin.
				Each decoded segment is written under --output as {sample}_{kind}_{i}.txt/.png/.wav.`,
	Flags: append([]cli.Flag{
		&cli.StringFlag{
			Name:        "input",
			Usage:       "Path to the token sequence json. If omitted, stdin is read.",
			Aliases:     []string{"i"},
			Destination: &inputPath,
		},
		&cli.StringFlag{
			Name:        "output",
			Usage:       "Directory where decoded segments are written",
			Aliases:     []string{"o"},
			Destination: &outputPath,
			Required:    true,
		},
		&cli.StringFlag{
			Name:        "sample",
			Usage:       "Sample id used as the output filename prefix",
			Destination: &sampleID,
			Value:       "sample",
		},
	}, backendFlags...),
	Action: func(ctx *cli.Context) error {
		session, err := newSession()
		if err != nil {
			return err
		}
		defer func() {
			if destroyErr := session.Destroy(); destroyErr != nil {
				fmt.Fprintln(os.Stderr, destroyErr)
			}
		}()

		vocabConfig, err := loadVocabConfig()
		if err != nil {
			return err
		}
		table, err := vocab.NewTable(vocabConfig)
		if err != nil {
			return err
		}
		text, err := session.NewTextTokenizer(tokenizerPath)
		if err != nil {
			return err
		}
		imageCodec, err := session.NewImageCodec(imageModelPath)
		if err != nil {
			return err
		}
		speechCodec, err := session.NewSpeechCodec(speechModelPath)
		if err != nil {
			return err
		}
		tokenizer := omnitok.NewMultimodalTokenizer(text, imageCodec, speechCodec, table, nil)

		data, err := readInput()
		if err != nil {
			return err
		}
		var ids []int64
		if err = json.Unmarshal(data, &ids); err != nil {
			return fmt.Errorf("parsing token sequence: %w", err)
		}

		segments, decodeErr := tokenizer.Decode(ids)
		paths, err := omnitok.WriteSegments(outputPath, sampleID, segments, speechCodec.Config.SampleRate)
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Println(p)
		}
		// A truncated trailing segment is reported after everything
		// completed has been written.
		return decodeErr
	},
}

var downloadCommand = &cli.Command{
	Name:  "download",
	Usage: "Download a codec model bundle from huggingface",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:        "output",
			Usage:       "Directory where the bundle is stored",
			Aliases:     []string{"o"},
			Destination: &outputPath,
			Required:    true,
		},
		&cli.StringFlag{
			Name:        "token",
			Usage:       "Huggingface auth token for gated repositories",
			Destination: &authToken,
		},
	},
	ArgsUsage: "MODEL_NAME",
	Action: func(ctx *cli.Context) error {
		if ctx.NArg() != 1 {
			return fmt.Errorf("expected exactly one model name argument")
		}
		opts := omnitok.NewDownloadOptions()
		opts.AuthToken = authToken
		opts.Verbose = true
		modelPath, err := omnitok.DownloadModel(ctx.Args().First(), outputPath, opts)
		if err != nil {
			return err
		}
		fmt.Println(modelPath)
		return nil
	},
}

func main() {
	app := &cli.App{
		Name:     "omnitok",
		Usage:    "Tokenize and detokenize text, images and speech for a multimodal sequence model",
		Commands: []*cli.Command{encodeCommand, decodeCommand, downloadCommand},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newSession() (*omnitok.Session, error) {
	switch backend {
	case "ORT":
		var opts []options.WithOption
		if sharedLibraryPath != "" {
			opts = append(opts, options.WithOnnxLibraryPath(sharedLibraryPath))
		}
		return omnitok.NewORTSession(opts...)
	case "GO":
		return omnitok.NewGoSession()
	default:
		return nil, fmt.Errorf("backend %q not recognized, use ORT or GO", backend)
	}
}

func loadVocabConfig() (vocab.Config, error) {
	if vocabPath == "" {
		return vocab.DefaultConfig(), nil
	}
	data, err := util.ReadFileBytes(vocabPath)
	if err != nil {
		return vocab.Config{}, err
	}
	return vocab.ParseConfig(data)
}

func tokenizerConfig() (omnitok.TokenizerConfig, error) {
	vocabConfig, err := loadVocabConfig()
	if err != nil {
		return omnitok.TokenizerConfig{}, err
	}
	return omnitok.TokenizerConfig{
		VocabConfig:     vocabConfig,
		TokenizerPath:   tokenizerPath,
		ImageModelPath:  imageModelPath,
		SpeechModelPath: speechModelPath,
	}, nil
}

func loadTokenizer() (*omnitok.MultimodalTokenizer, func(), error) {
	session, err := newSession()
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if destroyErr := session.Destroy(); destroyErr != nil {
			fmt.Fprintln(os.Stderr, destroyErr)
		}
	}

	cfg, err := tokenizerConfig()
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	tokenizer, err := session.NewMultimodalTokenizer(cfg)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return tokenizer, cleanup, nil
}

func readInput() ([]byte, error) {
	if inputPath != "" {
		return util.ReadFileBytes(inputPath)
	}
	if isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		return nil, fmt.Errorf("no --input given and nothing to read on stdin")
	}
	return io.ReadAll(os.Stdin)
}

// conversationFile is the json surface of a conversation.
type conversationFile struct {
	Mode     string `json:"mode"`
	Messages []struct {
		Role    string `json:"role"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
			Path string `json:"path"`
		} `json:"content"`
	} `json:"messages"`
}

func readConversation() (prompt.Conversation, error) {
	data, err := readInput()
	if err != nil {
		return prompt.Conversation{}, err
	}
	var file conversationFile
	if err = json.Unmarshal(data, &file); err != nil {
		return prompt.Conversation{}, fmt.Errorf("parsing conversation: %w", err)
	}

	conv := prompt.Conversation{}
	switch file.Mode {
	case "", "standard":
		conv.Mode = prompt.ModeStandard
	case "voice":
		conv.Mode = prompt.ModeVoice
	default:
		return prompt.Conversation{}, fmt.Errorf("conversation mode %q not recognized, use standard or voice", file.Mode)
	}

	for _, msg := range file.Messages {
		message := prompt.Message{Role: prompt.Role(msg.Role)}
		for _, part := range msg.Content {
			switch part.Type {
			case "text":
				message.Segments = append(message.Segments, prompt.Text(part.Text))
			case "image":
				img, loadErr := imageutil.LoadImageFromPath(part.Path)
				if loadErr != nil {
					return prompt.Conversation{}, loadErr
				}
				message.Segments = append(message.Segments, prompt.Image(img))
			case "speech":
				samples, loadErr := loadWaveform(part.Path)
				if loadErr != nil {
					return prompt.Conversation{}, loadErr
				}
				message.Segments = append(message.Segments, prompt.Speech(samples))
			default:
				return prompt.Conversation{}, fmt.Errorf("content type %q not recognized, use text, image or speech", part.Type)
			}
		}
		conv.Messages = append(conv.Messages, message)
	}
	return conv, nil
}

func loadWaveform(path string) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	samples, _, err := codecs.ReadWAV(f)
	return samples, err
}
