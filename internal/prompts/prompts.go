package prompts

// Summarization prompts. Every modality shares the same discipline: summarize
// the educational substance, ignore layout, formatting, and filler, and keep
// the output under 200 words.

// DocumentSystemPrompt sets the role for document summarization.
const DocumentSystemPrompt = `You summarize academic documents for university students.`

// DocumentUserPrompt prefixes the extracted document text.
const DocumentUserPrompt = `This is a full academic document. Please provide a detailed and clear summary in under 200 words. Focus on main topics, key arguments, definitions, examples, and conclusions. Avoid missing important parts.

`

// ImageSystemPrompt sets the role for image summarization.
const ImageSystemPrompt = `You help students by summarizing the academic or technical content within images.`

// ImageUserPrompt instructs the model to describe educational content only.
const ImageUserPrompt = `The following is an image of a student-uploaded educational resource. Please summarize the subject matter and content presented within the image. This may include explanations, math steps, diagrams, definitions, or bullet points. Do not describe the image layout or style; only focus on the meaning and educational value. Keep it under 200 words and write clearly for a student audience.`

// ArticleSystemPrompt sets the role for web page summarization.
const ArticleSystemPrompt = `You are a helpful assistant that summarizes the educational content of web pages for university students. Focus only on the main topics, arguments, and insights. Ignore formatting, layout, or non-relevant details.`

// ArticleUserPrompt prefixes the fetched page content.
const ArticleUserPrompt = `Please summarize the subject matter and key ideas in the following web page content. Keep your summary clear, focused, and under 200 words:

`

// VideoSystemPrompt sets the role for video transcript summarization.
const VideoSystemPrompt = `You are an assistant that summarizes the educational content of video transcripts for students. Focus on concepts, explanations, and examples. Keep it clear and ignore filler or intros.`

// VideoUserPrompt prefixes the concatenated transcript text.
const VideoUserPrompt = `Summarize the key educational content of this video transcript in a way that is helpful to students. Limit your summary to 200 words. Be clear, thorough, and content-focused:

`

// AnswerSystemPrompt sets the role for answer synthesis over retrieved
// resource summaries.
const AnswerSystemPrompt = `You summarize educational resources concisely and clearly.`

// AnswerUserTemplate takes the joined summaries of the surviving hits and
// the query.
const AnswerUserTemplate = `Given the following educational resource summaries:
%s

Provide a concise, short, clear, 3-sentence explanation of '%s'.`

// AnswerNoResultsTemplate is the generation prompt used when no resource
// scores above the similarity threshold. The answer must state that nothing
// matched before offering a general summary. It takes the query.
const AnswerNoResultsTemplate = `Sorry, I don't have any information about '%s'. However, from what I've gathered from the internet, please provide a short summary.`
