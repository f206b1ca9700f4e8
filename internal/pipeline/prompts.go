package pipeline

import "fmt"

// Prompts for the two pipeline stages. The searcher condenses indexed
// articles into key points; the writer expands those key points into a
// report, grounded in the lookup and web search results it is handed.

func searcherPrompt(topic, indexerOutput string) string {
	return fmt.Sprintf(`Search results for %q and create key points for each news item.

News database results:
%s

Produce a comprehensive list of key points from recent news articles about %s.
Each key point should be a short, factual statement naming its topic.`,
		topic, indexerOutput, topic)
}

func writerPrompt(topic, keyPoints, lookupOutput, searchOutput string) string {
	return fmt.Sprintf(`Go step by step.
Step 1: Identify all the topics received related to %s.
Step 2: Verify each topic against the news database results below, going through them one by one.
Step 3: Use the web search results below for detailed information on each topic, one by one.
Step 4: Go through every topic and write an in-depth summary of the information retrieved.
Don't skip any topic.
Focus specifically on: %s

Key points from the news searcher:
%s

News database results:
%s

Web search results:
%s

Write an in-depth summary report covering all identified topics related to %s
with detailed information retrieved from both the news database and web search.`,
		topic, topic, keyPoints, lookupOutput, searchOutput, topic)
}
