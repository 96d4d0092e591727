package news

import "aiml-news-pipeline/types"

// mockArticles is the fixed offline data set. Callers can tell mock results
// apart from live ones via the provenance flag returned by Search.
var mockArticles = []types.Article{
	{
		Title:         "OpenAI Releases GPT-5 with Multimodal Capabilities",
		Source:        "TechCrunch",
		PublishedDate: "2026-02-01",
		Summary:       "OpenAI has unveiled GPT-5, featuring enhanced multimodal understanding and reasoning capabilities. The new model shows significant improvements in mathematical reasoning and code generation.",
		URL:           "https://techcrunch.com/example1",
	},
	{
		Title:         "Google DeepMind Achieves Breakthrough in Protein Folding",
		Source:        "Nature",
		PublishedDate: "2026-01-30",
		Summary:       "Researchers at Google DeepMind have developed a new AI system that can predict protein structures with unprecedented accuracy, potentially accelerating drug discovery.",
		URL:           "https://nature.com/example2",
	},
	{
		Title:         "Meta Launches Open Source Large Language Model",
		Source:        "The Verge",
		PublishedDate: "2026-01-28",
		Summary:       "Meta has released Llama 4, an open-source large language model that rivals proprietary alternatives in performance while being freely available for commercial use.",
		URL:           "https://theverge.com/example3",
	},
	{
		Title:         "AI Regulation Bill Passes Senate Committee",
		Source:        "Reuters",
		PublishedDate: "2026-01-27",
		Summary:       "The Senate has advanced new AI safety legislation that would establish federal oversight for AI development and deployment, marking a significant step in AI governance.",
		URL:           "https://reuters.com/example4",
	},
	{
		Title:         "Anthropic Announces Constitutional AI Framework",
		Source:        "Wired",
		PublishedDate: "2026-01-26",
		Summary:       "Anthropic has introduced a new framework for training AI systems with built-in ethical constraints, aiming to create more reliable and aligned AI assistants.",
		URL:           "https://wired.com/example5",
	},
	{
		Title:         "Tesla Deploys Humanoid Robots in Manufacturing",
		Source:        "Bloomberg",
		PublishedDate: "2026-01-25",
		Summary:       "Tesla has begun using its Optimus humanoid robots in production facilities, marking a milestone in the integration of AI-powered robotics in manufacturing.",
		URL:           "https://bloomberg.com/example6",
	},
	{
		Title:         "AI Chip Startup Raises $500M Series C",
		Source:        "VentureBeat",
		PublishedDate: "2026-01-24",
		Summary:       "A Silicon Valley startup developing specialized AI chips has secured $500 million in funding, led by major tech investors betting on next-generation hardware.",
		URL:           "https://venturebeat.com/example7",
	},
	{
		Title:         "Stanford Researchers Develop Explainable AI System",
		Source:        "MIT Technology Review",
		PublishedDate: "2026-01-23",
		Summary:       "Stanford scientists have created an AI system that can explain its decision-making process in human-understandable terms, addressing the black box problem.",
		URL:           "https://technologyreview.com/example8",
	},
	{
		Title:         "Microsoft Integrates AI into Windows 12",
		Source:        "ZDNet",
		PublishedDate: "2026-01-22",
		Summary:       "Microsoft has announced Windows 12 will feature deep AI integration, including an intelligent assistant that can help users with complex tasks across applications.",
		URL:           "https://zdnet.com/example9",
	},
	{
		Title:         "AI-Generated Art Wins Major Competition",
		Source:        "The Guardian",
		PublishedDate: "2026-01-21",
		Summary:       "An AI-generated artwork has won first place in a prestigious international art competition, reigniting debates about creativity and machine learning.",
		URL:           "https://theguardian.com/example10",
	},
}

// Mock returns up to n articles from the fixed offline data set.
func Mock(n int) []types.Article {
	if n <= 0 || n > len(mockArticles) {
		n = len(mockArticles)
	}
	out := make([]types.Article, n)
	copy(out, mockArticles[:n])
	return out
}
