// Package script turns selected articles into a structured narration script:
// an intro, one segment per article, and an outro, each with an estimated
// spoken duration.
package script

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"regexp"
	"strconv"
	"strings"

	"aiml-news-pipeline/config"
	"aiml-news-pipeline/llm"
	"aiml-news-pipeline/timing"
	"aiml-news-pipeline/types"
)

const (
	introShare      = 0.08
	outroShare      = 0.07
	minArticleWords = 40

	// Advisory bound for target-vs-estimated duration mismatch. Never
	// enforced; the operator is only warned.
	durationTolerance = 0.15
)

// Options are the operator's choices for one script.
type Options struct {
	TargetMinutes int
	Tone          types.Tone
	ChannelName   string
}

// Structurer generates scripts. With a nil completer it runs in offline mode
// and produces the deterministic template script from article titles and
// summaries alone.
type Structurer struct {
	completer llm.Completer
	wpm       int
	maxTokens int
}

// New creates a Structurer.
func New(cfg *config.Config, completer llm.Completer) *Structurer {
	return &Structurer{
		completer: completer,
		wpm:       cfg.Script.WordsPerMinute,
		maxTokens: cfg.Script.MaxTokens,
	}
}

// Generate produces a script covering the given articles. The word budget is
// split across sections (intro ~8%, outro ~7%, the rest evenly over articles)
// and one generation request carries the whole script so the model can balance
// pacing across sections. Every section's estimate is recomputed from its
// final text.
func (s *Structurer) Generate(ctx context.Context, articles []types.Article, opts Options) (*types.Script, error) {
	if len(articles) == 0 {
		return nil, fmt.Errorf("no articles selected")
	}
	if opts.TargetMinutes <= 0 {
		return nil, fmt.Errorf("target duration must be positive, got %d", opts.TargetMinutes)
	}
	if opts.Tone == "" {
		opts.Tone = types.ToneProfessional
	}
	if opts.ChannelName == "" {
		opts.ChannelName = "AI Insights"
	}

	if s.completer == nil {
		log.Println("[script] Offline mode — using template script")
		return s.templateScript(articles, opts), nil
	}

	log.Printf("[script] Generating %d-minute %s script for %d articles...",
		opts.TargetMinutes, opts.Tone, len(articles))

	text, err := s.completer.Complete(ctx, s.buildPrompt(articles, opts), s.maxTokens)
	if err != nil {
		var genErr *llm.GenerationError
		if errors.As(err, &genErr) {
			return nil, err
		}
		return nil, &llm.GenerationError{Op: "script generation", Err: err}
	}

	parsed := parseSections(text, len(articles))
	if parsed.intro == "" && parsed.outro == "" && countNonEmpty(parsed.stories) == 0 {
		return nil, &llm.GenerationError{Op: "script parsing", Err: fmt.Errorf("no recognizable sections in response")}
	}

	script := s.assemble(articles, opts, parsed)
	log.Printf("[script] ✅ Script ready: %d sections, ~%.0f seconds", len(script.Sections), script.EstimatedSeconds)
	return script, nil
}

// assemble builds the final section list, padding any section the model
// skipped with its template counterpart rather than discarding the script.
func (s *Structurer) assemble(articles []types.Article, opts Options, parsed parsedScript) *types.Script {
	script := &types.Script{
		TargetMinutes: opts.TargetMinutes,
		Tone:          opts.Tone,
		ChannelName:   opts.ChannelName,
	}

	intro := parsed.intro
	if intro == "" {
		log.Println("[script] Warning: intro missing from response — padding with template")
		intro = templateIntro(opts)
	}
	script.Sections = append(script.Sections, types.ScriptSection{
		Kind:      types.SectionIntro,
		Narration: intro,
	})

	for i := range articles {
		narration := ""
		if i < len(parsed.stories) {
			narration = parsed.stories[i]
		}
		if narration == "" {
			log.Printf("[script] Warning: story %d missing from response — padding with template", i+1)
			narration = templateStory(articles[i], opts.Tone)
		}
		script.Sections = append(script.Sections, types.ScriptSection{
			Kind:      types.SectionArticle,
			Article:   &articles[i],
			Narration: narration,
		})
	}

	outro := parsed.outro
	if outro == "" {
		log.Println("[script] Warning: outro missing from response — padding with template")
		outro = templateOutro(opts)
	}
	script.Sections = append(script.Sections, types.ScriptSection{
		Kind:      types.SectionOutro,
		Narration: outro,
	})

	reestimate(script, s.wpm)
	return script
}

// templateScript is the deterministic no-model fallback built from article
// titles and summaries only.
func (s *Structurer) templateScript(articles []types.Article, opts Options) *types.Script {
	script := &types.Script{
		TargetMinutes: opts.TargetMinutes,
		Tone:          opts.Tone,
		ChannelName:   opts.ChannelName,
	}
	script.Sections = append(script.Sections, types.ScriptSection{
		Kind:      types.SectionIntro,
		Narration: templateIntro(opts),
	})
	for i := range articles {
		script.Sections = append(script.Sections, types.ScriptSection{
			Kind:      types.SectionArticle,
			Article:   &articles[i],
			Narration: templateStory(articles[i], opts.Tone),
		})
	}
	script.Sections = append(script.Sections, types.ScriptSection{
		Kind:      types.SectionOutro,
		Narration: templateOutro(opts),
	})
	reestimate(script, s.wpm)
	return script
}

func (s *Structurer) buildPrompt(articles []types.Article, opts Options) string {
	budget := timing.WordBudget(float64(opts.TargetMinutes), s.wpm)
	introWords := int(math.Round(float64(budget) * introShare))
	outroWords := int(math.Round(float64(budget) * outroShare))
	storyWords := (budget - introWords - outroWords) / len(articles)
	if storyWords < minArticleWords {
		storyWords = minArticleWords
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("You are a professional YouTube script writer for the channel %q.\n", opts.ChannelName))
	sb.WriteString(fmt.Sprintf("Create an engaging %d-minute video script for an AI/ML news roundup.\n\n", opts.TargetMinutes))
	sb.WriteString(fmt.Sprintf("TONE: %s — %s\n", opts.Tone, toneInstruction(opts.Tone)))
	sb.WriteString(fmt.Sprintf("TARGET LENGTH: Approximately %d words (%d minutes at %d words/minute)\n\n",
		budget, opts.TargetMinutes, s.wpm))

	sb.WriteString("NEWS ARTICLES TO COVER:\n")
	for i, a := range articles {
		sb.WriteString(fmt.Sprintf("Article %d:\nTitle: %s\nSource: %s\nDate: %s\nSummary: %s\n\n",
			i+1, a.Title, orDefault(a.Source, "Unknown"), orDefault(a.PublishedDate, "N/A"),
			orDefault(a.Summary, "No summary")))
	}

	sb.WriteString("SCRIPT REQUIREMENTS:\n")
	sb.WriteString("1. Start with an engaging hook and channel intro\n")
	sb.WriteString("2. Cover each news story in a clear, concise way with smooth transitions\n")
	sb.WriteString("3. Add relevant context or implications for each story\n")
	sb.WriteString("4. End with a compelling outro and call-to-action (like, subscribe, comment)\n")
	sb.WriteString(fmt.Sprintf("5. Mark each section with exactly one header on its own line: [INTRO], [STORY 1] ... [STORY %d], [OUTRO]\n", len(articles)))
	sb.WriteString(fmt.Sprintf("6. Aim for roughly %d words in the intro, %d words per story, and %d words in the outro\n",
		introWords, storyWords, outroWords))
	sb.WriteString("7. Write in a conversational style suitable for narration; avoid overly complex sentences\n\n")
	sb.WriteString("Do not include anything except the section headers and the narration text.\n")
	sb.WriteString("Generate the complete video script now:")
	return sb.String()
}

// --- Response parsing ---

type parsedScript struct {
	intro   string
	stories []string
	outro   string
}

var (
	headerRe = regexp.MustCompile(`(?mi)^\s*\[(INTRO|STORY\s*(\d+)|OUTRO)\]`)
	markerRe = regexp.MustCompile(`\[[^\]]*\]`)
	spaceRe  = regexp.MustCompile(`\s+`)
)

// parseSections splits the generated text on [INTRO]/[STORY n]/[OUTRO]
// headers. Unrecognized bracketed markers (timing hints and the like) are
// stripped from the narration.
func parseSections(text string, numArticles int) parsedScript {
	parsed := parsedScript{stories: make([]string, numArticles)}

	matches := headerRe.FindAllStringSubmatchIndex(text, -1)
	for i, m := range matches {
		bodyStart := m[1]
		bodyEnd := len(text)
		if i+1 < len(matches) {
			bodyEnd = matches[i+1][0]
		}
		body := cleanNarration(text[bodyStart:bodyEnd])
		if body == "" {
			continue
		}

		header := strings.ToUpper(text[m[2]:m[3]])
		switch {
		case header == "INTRO":
			parsed.intro = body
		case header == "OUTRO":
			parsed.outro = body
		default: // STORY n
			if m[4] < 0 {
				continue
			}
			n, err := strconv.Atoi(text[m[4]:m[5]])
			if err == nil && n >= 1 && n <= numArticles {
				parsed.stories[n-1] = body
			}
		}
	}
	return parsed
}

// cleanNarration strips leftover bracketed markers and normalizes whitespace
// so the text is ready for narration and captioning.
func cleanNarration(s string) string {
	s = markerRe.ReplaceAllString(s, "")
	s = spaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// --- Templates (original no-API script, kept deterministic) ---

func templateIntro(opts Options) string {
	return fmt.Sprintf("Hey everyone, welcome back to %s! I'm excited to bring you the latest developments "+
		"in artificial intelligence and machine learning. We've got some incredible stories to cover today, "+
		"from groundbreaking research to major industry announcements. Let's dive right in!", opts.ChannelName)
}

func templateStory(a types.Article, tone types.Tone) string {
	summary := orDefault(a.Summary, "This is an important development in the AI space.")
	source := orDefault(a.Source, "reports")
	return fmt.Sprintf("%s. %s According to %s, this development could have significant implications "+
		"for the future of AI technology. %s", a.Title, summary, source, toneContext(tone))
}

func templateOutro(opts Options) string {
	return fmt.Sprintf("And that wraps up today's AI news roundup! The pace of innovation in this field "+
		"continues to accelerate, and it's an exciting time to be following these developments. "+
		"If you found this video helpful, please give it a thumbs up and subscribe to %s for more AI and "+
		"machine learning content. Drop a comment below and let me know which story you found most "+
		"interesting! Thanks for watching, and I'll see you in the next video!", opts.ChannelName)
}

func toneContext(tone types.Tone) string {
	switch tone {
	case types.ToneProfessional:
		return "Industry experts are closely monitoring this development."
	case types.ToneCasual:
		return "Pretty cool stuff, right?"
	case types.ToneEnthusiastic:
		return "This is absolutely incredible and game-changing!"
	case types.ToneEducational:
		return "Let's break down what this means for the field."
	default:
		return "This is an interesting development."
	}
}

func toneInstruction(tone types.Tone) string {
	switch tone {
	case types.ToneProfessional:
		return "measured, authoritative delivery aimed at industry viewers"
	case types.ToneCasual:
		return "relaxed and friendly, like explaining to a friend"
	case types.ToneEnthusiastic:
		return "high energy, excited about every story"
	case types.ToneEducational:
		return "patient and explanatory, defining terms as you go"
	default:
		return "clear and neutral"
	}
}

// --- Shared helpers ---

// ApplyEdit replaces a section's narration with the operator's edit and
// recomputes its estimate and the script total.
func ApplyEdit(script *types.Script, index int, narration string, wordsPerMinute int) error {
	if index < 0 || index >= len(script.Sections) {
		return fmt.Errorf("section index %d out of range (0-%d)", index, len(script.Sections)-1)
	}
	script.Sections[index].Narration = strings.TrimSpace(narration)
	reestimate(script, wordsPerMinute)
	return nil
}

// DurationAdvisory reports how the estimated duration compares with the
// target. Returns "" when the mismatch is inside the advisory tolerance.
func DurationAdvisory(script *types.Script) string {
	target := float64(script.TargetMinutes) * 60
	if target <= 0 {
		return ""
	}
	delta := math.Abs(script.EstimatedSeconds-target) / target
	if delta <= durationTolerance {
		return ""
	}
	return fmt.Sprintf("estimated duration %.0fs differs from target %.0fs by %.0f%% (advisory only)",
		script.EstimatedSeconds, target, delta*100)
}

// ParseTone validates an operator-supplied tone name.
func ParseTone(s string) (types.Tone, error) {
	for _, t := range types.Tones {
		if strings.EqualFold(s, string(t)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown tone %q (valid: Professional, Casual, Enthusiastic, Educational)", s)
}

func reestimate(script *types.Script, wpm int) {
	var total float64
	for i := range script.Sections {
		d := timing.EstimateDuration(script.Sections[i].Narration, wpm)
		script.Sections[i].EstimatedSeconds = d
		total += d
	}
	script.EstimatedSeconds = total
}

func countNonEmpty(ss []string) int {
	n := 0
	for _, s := range ss {
		if s != "" {
			n++
		}
	}
	return n
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
